package domain

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func TestNewSubmission_AppliesDefaults(t *testing.T) {
	sub := NewSubmission(snowflake.ID(42), "dj_owner", "", "", "https://example.com/track", "", "")

	if sub.Artist != "dj_owner" {
		t.Errorf("expected artist to default to owner name, got %q", sub.Artist)
	}
	if sub.Title != "Not Known" {
		t.Errorf("expected title to default to %q, got %q", "Not Known", sub.Title)
	}
	if sub.Tier != TierFree {
		t.Errorf("expected tier %q, got %q", TierFree, sub.Tier)
	}
	if sub.Score != 0 {
		t.Errorf("expected zero score, got %f", sub.Score)
	}
	if sub.IsPlayed() {
		t.Error("expected new submission to be unplayed")
	}
}

func TestNewSubmission_KeepsProvidedFields(t *testing.T) {
	sub := NewSubmission(
		snowflake.ID(42),
		"dj_owner",
		"Artist",
		"Title",
		"https://example.com/track",
		"for the late set",
		"artist_tok",
	)

	if sub.Artist != "Artist" || sub.Title != "Title" {
		t.Errorf("expected provided fields to be kept, got %q / %q", sub.Artist, sub.Title)
	}
	if sub.TikTokHandle != "artist_tok" {
		t.Errorf("expected handle to be kept, got %q", sub.TikTokHandle)
	}
}

func TestSubmission_Clone(t *testing.T) {
	playedAt := time.Now().UTC()
	sub := &Submission{
		Seq:      1,
		PublicID: "abcd1234",
		Tier:     TierPlayed,
		PlayedAt: &playedAt,
	}

	dup := sub.Clone()
	dup.Tier = TierFree
	*dup.PlayedAt = playedAt.Add(time.Hour)

	if sub.Tier != TierPlayed {
		t.Error("expected clone mutation to not affect the original tier")
	}
	if !sub.PlayedAt.Equal(playedAt) {
		t.Error("expected clone mutation to not affect the original played time")
	}
}
