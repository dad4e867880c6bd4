package parser

import (
	"testing"
)

func TestLinks_Basic(t *testing.T) {
	body := "See [[Note A]] and [[Note B|alias]].\nAlso [[Note A]] again."
	links := Links(body)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0] != "Note A" || links[1] != "Note B" {
		t.Errorf("links = %v", links)
	}
}

func TestLinks_EmptyTarget(t *testing.T) {
	links := Links("see [[ ]] and [[|alias]]")
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}

func TestLinks_None(t *testing.T) {
	if links := Links("plain text without references"); len(links) != 0 {
		t.Errorf("links = %v", links)
	}
}

func TestTags_Inline(t *testing.T) {
	body := "Some text #beta and #alpha, then #beta again."
	tags := Tags(body)
	if len(tags) != 2 || tags[0] != "beta" || tags[1] != "alpha" {
		t.Errorf("tags = %v, want [beta alpha]", tags)
	}
}

func TestTags_IgnoresMidWordHashes(t *testing.T) {
	tags := Tags("issue#42 is not a tag but #real-tag is")
	if len(tags) != 1 || tags[0] != "real-tag" {
		t.Errorf("tags = %v, want [real-tag]", tags)
	}
}

func TestTags_RequiresLetterStart(t *testing.T) {
	if tags := Tags("price is #99 today"); len(tags) != 0 {
		t.Errorf("tags = %v, want none for numeric tag", tags)
	}
}
