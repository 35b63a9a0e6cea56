package brain

import (
	"context"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

// ClassifyRequest carries one comment and the labels of every same-stance
// group already in its room. RoomID is used for the audit trail only.
type ClassifyRequest struct {
	RoomID         int64
	Stance         model.Stance
	Text           string
	ExistingLabels []string
}

// Classification names an existing label, or nil to ask for a new group.
// ProposedLabel always summarizes the group the comment ends up in.
type Classification struct {
	MatchedLabel  *string
	ProposedLabel string
}

type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (Classification, error)
}

type SummarizeRequest struct {
	RoomID  int64
	GroupID int64
	Stance  model.Stance
	Texts   []string
}

type Summary struct {
	Title       string
	Description string
}

type Summarizer interface {
	Summarize(ctx context.Context, req SummarizeRequest) (Summary, error)
}

// MatchRequest asks for the best counter-argument to Group among Candidates,
// which callers restrict to opposite-stance groups of the same room.
type MatchRequest struct {
	Group      model.Group
	Candidates []model.Group
}

// CounterMatch holds at most one candidate id. BestMatchID is always one of
// the supplied candidates or nil.
type CounterMatch struct {
	BestMatchID *int64
	Confidence  float64
	Reasoning   string
}

type CounterMatcher interface {
	MatchCounter(ctx context.Context, req MatchRequest) (CounterMatch, error)
}
