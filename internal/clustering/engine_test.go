package clustering_test

import (
	"context"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store/memstore"
)

var _ = Describe("Engine", func() {
	var (
		ctx        context.Context
		mem        *memstore.Store
		classifier *mockClassifier
		summarizer *mockSummarizer
		matcher    *mockMatcher
		engine     *clustering.Engine
		room       model.Room
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = memstore.New()
		classifier = &mockClassifier{classifyFn: func(_ context.Context, req brain.ClassifyRequest) (brain.Classification, error) {
			return brain.Classification{ProposedLabel: brain.LabelFromText(req.Text)}, nil
		}}
		summarizer = &mockSummarizer{}
		matcher = &mockMatcher{}
		engine = clustering.New(mem, mem, brain.Oracles{
			Classifier: classifier,
			Summarizer: summarizer,
			Matcher:    matcher,
		})

		var err error
		room, err = mem.Rooms().Create(ctx, model.Room{Topic: "Renewable energy"})
		Expect(err).NotTo(HaveOccurred())
	})

	newComment := func(stance model.Stance, text string) model.Comment {
		c, err := mem.Comments().Create(ctx, model.Comment{
			RoomID: room.ID,
			Stance: stance,
			Text:   text,
			Author: model.Author{Kind: model.AuthorKindNormal, ID: "u1"},
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	newGroup := func(stance model.Stance, order float64, commentIDs ...int64) model.Group {
		g, err := mem.Groups().Create(ctx, model.Group{
			RoomID:       room.ID,
			Stance:       stance,
			Label:        "label",
			Title:        "title",
			CommentIDs:   commentIDs,
			DisplayOrder: order,
		})
		Expect(err).NotTo(HaveOccurred())
		return g
	}

	link := func(a, b model.Group) {
		Expect(mem.Groups().UpdateLink(ctx, a.ID, &b.ID)).To(Succeed())
		Expect(mem.Groups().UpdateLink(ctx, b.ID, &a.ID)).To(Succeed())
	}

	reload := func(g model.Group) model.Group {
		fresh, err := mem.Groups().GetByID(ctx, g.ID)
		Expect(err).NotTo(HaveOccurred())
		return fresh
	}

	Describe("Classify", func() {
		It("creates the first group at display order 0", func() {
			c := newComment(model.StanceFor, "Renewable energy cuts long-term costs")
			classifier.classifyFn = func(_ context.Context, req brain.ClassifyRequest) (brain.Classification, error) {
				Expect(req.ExistingLabels).To(BeEmpty())
				return brain.Classification{ProposedLabel: "Renewable Cost Benefits"}, nil
			}

			assignment, err := engine.Classify(ctx, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.IsNew).To(BeTrue())
			Expect(assignment.Group.Label).To(Equal("Renewable Cost Benefits"))
			Expect(assignment.Group.Stance).To(Equal(model.StanceFor))
			Expect(assignment.Group.DisplayOrder).To(Equal(0.0))
			Expect(assignment.Group.CommentIDs).To(Equal([]int64{c.ID}))
			Expect(assignment.Group.CounterGroupID).To(BeNil())

			stored, err := mem.Comments().GetByID(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*stored.GroupID).To(Equal(assignment.Group.ID))
		})

		It("places later new groups after the maximum order of their stance", func() {
			newGroup(model.StanceFor, 3.5, 1)
			newGroup(model.StanceAgainst, 10, 2)

			assignment, err := engine.Classify(ctx, newComment(model.StanceFor, "Wind farms create jobs"))
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.IsNew).To(BeTrue())
			Expect(assignment.Group.DisplayOrder).To(Equal(4.5))
		})

		It("appends to a matched group and overwrites its label", func() {
			first := newComment(model.StanceFor, "Solar is cheap")
			existing := newGroup(model.StanceFor, 0, first.ID)
			Expect(mem.Comments().AssignToGroup(ctx, first.ID, existing.ID)).To(Succeed())

			classifier.classifyFn = func(_ context.Context, req brain.ClassifyRequest) (brain.Classification, error) {
				Expect(req.ExistingLabels).To(Equal([]string{"label"}))
				matched := "label"
				return brain.Classification{MatchedLabel: &matched, ProposedLabel: "Cheap Renewables"}, nil
			}

			second := newComment(model.StanceFor, "Wind is cheap too")
			assignment, err := engine.Classify(ctx, second)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.IsNew).To(BeFalse())
			Expect(assignment.Group.ID).To(Equal(existing.ID))
			Expect(assignment.Group.Label).To(Equal("Cheap Renewables"))
			Expect(assignment.Group.Title).To(Equal("title"))
			Expect(assignment.Group.CommentIDs).To(Equal([]int64{first.ID, second.ID}))
		})

		It("only offers labels of the comment's stance", func() {
			newGroup(model.StanceAgainst, 0, 1)
			classifier.classifyFn = func(_ context.Context, req brain.ClassifyRequest) (brain.Classification, error) {
				Expect(req.ExistingLabels).To(BeEmpty())
				return brain.Classification{ProposedLabel: "x"}, nil
			}
			_, err := engine.Classify(ctx, newComment(model.StanceFor, "text"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates a new group when the oracle names an unknown label", func() {
			newGroup(model.StanceFor, 0, 1)
			classifier.classifyFn = func(context.Context, brain.ClassifyRequest) (brain.Classification, error) {
				hallucinated := "Not A Real Label"
				return brain.Classification{MatchedLabel: &hallucinated, ProposedLabel: "Fresh Theme"}, nil
			}

			assignment, err := engine.Classify(ctx, newComment(model.StanceFor, "text"))
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.IsNew).To(BeTrue())
			Expect(assignment.Group.Label).To(Equal("Fresh Theme"))
		})

		It("falls back to the heuristic when the oracle fails", func() {
			c := newComment(model.StanceAgainst, "Subsidies are fiscally unsustainable")
			g, err := mem.Groups().Create(ctx, model.Group{
				RoomID: room.ID, Stance: model.StanceAgainst, Label: "Fiscal Burden Of Subsidies", CommentIDs: []int64{1},
			})
			Expect(err).NotTo(HaveOccurred())
			classifier.classifyFn = func(context.Context, brain.ClassifyRequest) (brain.Classification, error) {
				return brain.Classification{}, errOracleDown
			}

			assignment, err := engine.Classify(ctx, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.IsNew).To(BeFalse())
			Expect(assignment.Group.ID).To(Equal(g.ID))
		})

		It("rejects comments that already belong to a group", func() {
			c := newComment(model.StanceFor, "text")
			groupID := int64(5)
			c.GroupID = &groupID
			_, err := engine.Classify(ctx, c)
			Expect(err).To(MatchError(model.ErrInvalidState))
		})
	})

	Describe("Regenerate", func() {
		It("rejects an empty group without modifying it", func() {
			g := newGroup(model.StanceFor, 0)

			_, err := engine.Regenerate(ctx, g.ID, false)
			Expect(err).To(MatchError(model.ErrInvalidState))
			Expect(summarizer.callCount).To(Equal(0))
			Expect(reload(g)).To(Equal(g))
		})

		It("returns not found for unknown groups", func() {
			_, err := engine.Regenerate(ctx, 12345, false)
			Expect(err).To(MatchError(model.ErrNotFound))
		})

		It("summarizes member texts in membership order", func() {
			a := newComment(model.StanceFor, "first point")
			b := newComment(model.StanceFor, "second point")
			g := newGroup(model.StanceFor, 0, a.ID, b.ID)
			Expect(mem.Comments().AssignToGroup(ctx, a.ID, g.ID)).To(Succeed())
			Expect(mem.Comments().AssignToGroup(ctx, b.ID, g.ID)).To(Succeed())

			summarizer.summarizeFn = func(_ context.Context, req brain.SummarizeRequest) (brain.Summary, error) {
				Expect(req.Texts).To(Equal([]string{"first point", "second point"}))
				return brain.Summary{Title: "Two points", Description: "Covers both."}, nil
			}

			updated, err := engine.Regenerate(ctx, g.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("Two points"))
			Expect(updated.Description).To(Equal("Covers both."))
			Expect(updated.Label).To(Equal("label"))
			Expect(updated.UpdatedAt).NotTo(BeTemporally("<", g.UpdatedAt))
		})

		It("keeps existing content when the summarizer fails", func() {
			c := newComment(model.StanceFor, "text")
			g := newGroup(model.StanceFor, 0, c.ID)
			Expect(mem.Comments().AssignToGroup(ctx, c.ID, g.ID)).To(Succeed())
			summarizer.summarizeFn = func(context.Context, brain.SummarizeRequest) (brain.Summary, error) {
				return brain.Summary{}, errOracleDown
			}

			updated, err := engine.Regenerate(ctx, g.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("title"))
		})

		It("gives a brand-new group placeholder content when the summarizer fails", func() {
			c := newComment(model.StanceFor, "text")
			g := newGroup(model.StanceFor, 0, c.ID)
			Expect(mem.Comments().AssignToGroup(ctx, c.ID, g.ID)).To(Succeed())
			summarizer.summarizeFn = func(context.Context, brain.SummarizeRequest) (brain.Summary, error) {
				return brain.Summary{}, errOracleDown
			}

			updated, err := engine.Regenerate(ctx, g.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal(clustering.PlaceholderTitle))
			Expect(updated.Description).To(Equal(clustering.PlaceholderDescription))
		})
	})

	Describe("MaintainLink", func() {
		It("links a new match both ways and places the group after its partner", func() {
			g1 := newGroup(model.StanceFor, 0, 1)
			g2 := newGroup(model.StanceAgainst, 0, 2)
			matcher.matchFn = matchTo(map[int64]int64{g2.ID: g1.ID})

			outcome, err := engine.MaintainLink(ctx, g2, []model.Group{g1})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Changed).To(BeTrue())
			Expect(outcome.Confidence).To(Equal(0.82))
			Expect(outcome.Touched).To(ConsistOf(g1.ID, g2.ID))

			g1, g2 = reload(g1), reload(g2)
			Expect(*g1.CounterGroupID).To(Equal(g2.ID))
			Expect(*g2.CounterGroupID).To(Equal(g1.ID))
			Expect(g2.DisplayOrder).To(Equal(0.5))
			Expect(outcome.Group.DisplayOrder).To(Equal(0.5))
		})

		It("skips the oracle when there are no candidates", func() {
			g := newGroup(model.StanceFor, 0, 1)
			outcome, err := engine.MaintainLink(ctx, g, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Changed).To(BeFalse())
			Expect(matcher.callCount).To(Equal(0))
		})

		It("is a no-op when the best match is the current partner", func() {
			g1 := newGroup(model.StanceFor, 0, 1)
			g2 := newGroup(model.StanceAgainst, 7, 2)
			link(g1, g2)
			g1 = reload(g1)
			matcher.matchFn = matchTo(map[int64]int64{g1.ID: g2.ID})

			outcome, err := engine.MaintainLink(ctx, g1, []model.Group{g2})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Changed).To(BeFalse())
			Expect(outcome.Touched).To(BeEmpty())
			Expect(reload(g1).DisplayOrder).To(Equal(0.0))
		})

		It("keeps an existing link when the oracle finds no match", func() {
			g1 := newGroup(model.StanceFor, 0, 1)
			g2 := newGroup(model.StanceAgainst, 0.5, 2)
			link(g1, g2)
			matcher.matchFn = matchTo(nil)

			outcome, err := engine.MaintainLink(ctx, reload(g1), []model.Group{g2})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Changed).To(BeFalse())
			Expect(*reload(g1).CounterGroupID).To(Equal(g2.ID))
			Expect(*reload(g2).CounterGroupID).To(Equal(g1.ID))
		})

		It("releases the old partner when a different match is found", func() {
			a := newGroup(model.StanceFor, 0, 1)
			oldPartner := newGroup(model.StanceAgainst, 0.5, 2)
			newPartner := newGroup(model.StanceAgainst, 3, 3)
			link(a, oldPartner)
			matcher.matchFn = matchTo(map[int64]int64{a.ID: newPartner.ID})

			outcome, err := engine.MaintainLink(ctx, reload(a), []model.Group{oldPartner, newPartner})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Touched).To(ConsistOf(a.ID, oldPartner.ID, newPartner.ID))

			Expect(reload(oldPartner).CounterGroupID).To(BeNil())
			Expect(*reload(a).CounterGroupID).To(Equal(newPartner.ID))
			Expect(*reload(newPartner).CounterGroupID).To(Equal(a.ID))
			Expect(reload(a).DisplayOrder).To(Equal(3.5))
			expectLinkInvariants(ctx, mem, room.ID)
		})

		It("releases the new partner's previous partner", func() {
			a := newGroup(model.StanceFor, 0, 1)
			x := newGroup(model.StanceFor, 1, 2)
			p := newGroup(model.StanceAgainst, 2, 3)
			link(x, p)
			matcher.matchFn = matchTo(map[int64]int64{a.ID: p.ID})

			outcome, err := engine.MaintainLink(ctx, a, []model.Group{reload(p)})
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Touched).To(ConsistOf(a.ID, p.ID, x.ID))

			Expect(reload(x).CounterGroupID).To(BeNil())
			Expect(*reload(p).CounterGroupID).To(Equal(a.ID))
			expectLinkInvariants(ctx, mem, room.ID)
		})

		It("reports oracle failures as skipped without touching links", func() {
			g1 := newGroup(model.StanceFor, 0, 1)
			g2 := newGroup(model.StanceAgainst, 0.5, 2)
			link(g1, g2)
			matcher.matchFn = func(context.Context, brain.MatchRequest) (brain.CounterMatch, error) {
				return brain.CounterMatch{}, errOracleDown
			}

			outcome, err := engine.MaintainLink(ctx, reload(g1), []model.Group{g2})
			Expect(err).To(MatchError(model.ErrOracleUnavailable))
			Expect(outcome.Skipped).To(BeTrue())
			Expect(*reload(g1).CounterGroupID).To(Equal(g2.ID))
		})

		It("refuses a partner of the same stance", func() {
			a := newGroup(model.StanceFor, 0, 1)
			b := newGroup(model.StanceFor, 1, 2)
			matcher.matchFn = matchTo(map[int64]int64{a.ID: b.ID})

			_, err := engine.MaintainLink(ctx, a, []model.Group{b})
			Expect(err).To(MatchError(model.ErrInvalidState))
			Expect(reload(a).CounterGroupID).To(BeNil())
		})
	})

	Describe("RelinkRoom", func() {
		It("links mutual best matches and is idempotent", func() {
			f1 := newGroup(model.StanceFor, 0, 1)
			f2 := newGroup(model.StanceFor, 1, 2)
			a1 := newGroup(model.StanceAgainst, 0, 3)
			a2 := newGroup(model.StanceAgainst, 1, 4)
			matcher.matchFn = matchTo(map[int64]int64{
				f1.ID: a2.ID, a2.ID: f1.ID,
				f2.ID: a1.ID, a1.ID: f2.ID,
			})

			first, err := engine.RelinkRoom(ctx, room.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.UpdatedCount).To(Equal(4))
			Expect(first.SkippedCount).To(Equal(0))
			expectLinkInvariants(ctx, mem, room.ID)
			Expect(*reload(f1).CounterGroupID).To(Equal(a2.ID))
			Expect(*reload(f2).CounterGroupID).To(Equal(a1.ID))

			second, err := engine.RelinkRoom(ctx, room.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.UpdatedCount).To(Equal(0))
		})

		It("counts oracle failures as skipped", func() {
			newGroup(model.StanceFor, 0, 1)
			newGroup(model.StanceAgainst, 0, 2)
			matcher.matchFn = func(context.Context, brain.MatchRequest) (brain.CounterMatch, error) {
				return brain.CounterMatch{}, errOracleDown
			}

			result, err := engine.RelinkRoom(ctx, room.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(clustering.RelinkResult{UpdatedCount: 0, SkippedCount: 2}))
		})

		It("shows the oracle snapshot content, not content written mid-batch", func() {
			f := newGroup(model.StanceFor, 0, 1)
			a := newGroup(model.StanceAgainst, 0, 2)
			var seenTitles []string
			matcher.matchFn = func(_ context.Context, req brain.MatchRequest) (brain.CounterMatch, error) {
				if req.Group.ID == f.ID {
					_, err := mem.Groups().UpdateContent(ctx, a.ID, "label", "rewritten", "")
					Expect(err).NotTo(HaveOccurred())
				} else {
					seenTitles = append(seenTitles, req.Group.Title)
				}
				return brain.CounterMatch{}, nil
			}

			_, err := engine.RelinkRoom(ctx, room.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(seenTitles).To(Equal([]string{"title"}))
		})

		It("keeps links symmetric under arbitrary oracle answers", func() {
			rng := rand.New(rand.NewPCG(7, 11))
			var groups []model.Group
			for i := range 8 {
				stance := model.StanceFor
				if i%2 == 1 {
					stance = model.StanceAgainst
				}
				groups = append(groups, newGroup(stance, float64(i), int64(i+1)))
			}
			matcher.matchFn = func(_ context.Context, req brain.MatchRequest) (brain.CounterMatch, error) {
				switch n := rng.IntN(len(req.Candidates) + 2); {
				case n == len(req.Candidates):
					return brain.CounterMatch{}, nil
				case n > len(req.Candidates):
					return brain.CounterMatch{}, errOracleDown
				default:
					id := req.Candidates[n].ID
					return brain.CounterMatch{BestMatchID: &id}, nil
				}
			}

			for range 10 {
				_, err := engine.RelinkRoom(ctx, room.ID)
				Expect(err).NotTo(HaveOccurred())
				expectLinkInvariants(ctx, mem, room.ID)

				g := groups[rng.IntN(len(groups))]
				candidates, err := engine.Candidates(ctx, g)
				Expect(err).NotTo(HaveOccurred())
				_, _ = engine.MaintainLink(ctx, reload(g), candidates)
				expectLinkInvariants(ctx, mem, room.ID)
			}
		})
	})
})
