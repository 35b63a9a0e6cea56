package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/handler"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/lock"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/service"
)

func int64Ptr(v int64) *int64 { return &v }

func decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp
}

var _ = Describe("DebateHandler", func() {
	var (
		router *gin.Engine
		svc    *mockDebateService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockDebateService{}
		h := handler.NewDebateHandler(svc)
		router.POST("/rooms/:roomId/comments", h.AddComment)
		router.GET("/rooms/:roomId/groups", h.ListGroups)
		router.GET("/rooms/:roomId/groups/search", h.SearchGroups)
		router.POST("/rooms/:roomId/relink", h.Relink)
		router.GET("/rooms/:roomId/counter-status", h.CounterStatus)
		router.POST("/groups/:groupId/regenerate", h.RegenerateGroup)
		router.GET("/groups/:groupId/counter-analysis", h.CounterAnalysis)
		router.GET("/groups/:groupId/oracle-calls", h.OracleCalls)
	})

	serve := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf *bytes.Buffer
		switch b := body.(type) {
		case nil:
			buf = &bytes.Buffer{}
		case string:
			buf = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			Expect(err).NotTo(HaveOccurred())
			buf = bytes.NewBuffer(raw)
		}
		req := httptest.NewRequest(method, path, buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("AddComment", func() {
		validBody := map[string]any{
			"stance": "for",
			"text":   "Solar is getting cheaper every year",
			"author": map[string]string{"kind": "normal", "id": "u1"},
		}

		It("returns 201 with the comment, its group and string ids", func() {
			var got service.AddCommentInput
			svc.addCommentFn = func(_ context.Context, in service.AddCommentInput) (service.IngestResult, error) {
				got = in
				return service.IngestResult{
					Comment: model.Comment{ID: 7, RoomID: in.RoomID, Stance: in.Stance, Text: in.Text, GroupID: int64Ptr(3), Author: in.Author},
					Group: model.Group{
						ID: 3, RoomID: in.RoomID, Stance: in.Stance, Label: "Solar Cost",
						Title: "Solar keeps getting cheaper", CommentIDs: []int64{7}, CounterGroupID: int64Ptr(9),
					},
					IsNewGroup: true,
				}, nil
			}

			w := serve(http.MethodPost, "/rooms/42/comments", validBody)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(got.RoomID).To(Equal(int64(42)))
			Expect(got.Stance).To(Equal(model.StanceFor))
			Expect(got.Author).To(Equal(model.Author{Kind: model.AuthorKindNormal, ID: "u1"}))

			resp := decode(w)
			Expect(resp["is_new_group"]).To(BeTrue())
			Expect(resp["counter_link_skipped"]).To(BeFalse())
			comment := resp["comment"].(map[string]any)
			Expect(comment["id"]).To(Equal("7"))
			Expect(comment["group_id"]).To(Equal("3"))
			Expect(comment["likes"]).To(BeEmpty())
			group := resp["group"].(map[string]any)
			Expect(group["id"]).To(Equal("3"))
			Expect(group["counter_group_id"]).To(Equal("9"))
			Expect(group["comment_ids"]).To(ConsistOf("7"))
			Expect(group["comment_count"]).To(BeEquivalentTo(1))
		})

		It("accepts a mixed-case stance", func() {
			var got model.Stance
			svc.addCommentFn = func(_ context.Context, in service.AddCommentInput) (service.IngestResult, error) {
				got = in.Stance
				return service.IngestResult{}, nil
			}

			body := map[string]any{"stance": "Against", "text": "t", "author": map[string]string{"kind": "expert", "id": "e"}}
			w := serve(http.MethodPost, "/rooms/1/comments", body)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(got).To(Equal(model.StanceAgainst))
		})

		It("returns 400 on malformed JSON", func() {
			w := serve(http.MethodPost, "/rooms/1/comments", `{`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["code"]).To(Equal("invalid_input"))
		})

		It("returns 400 on an unknown stance without calling the service", func() {
			called := false
			svc.addCommentFn = func(context.Context, service.AddCommentInput) (service.IngestResult, error) {
				called = true
				return service.IngestResult{}, nil
			}

			body := map[string]any{"stance": "neutral", "text": "t", "author": map[string]string{"kind": "normal", "id": "u"}}
			w := serve(http.MethodPost, "/rooms/1/comments", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(called).To(BeFalse())
		})

		It("returns 400 on a non-numeric room id", func() {
			w := serve(http.MethodPost, "/rooms/abc/comments", validBody)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("maps service errors to status codes",
			func(err error, status int, code string) {
				svc.addCommentFn = func(context.Context, service.AddCommentInput) (service.IngestResult, error) {
					return service.IngestResult{}, err
				}

				w := serve(http.MethodPost, "/rooms/1/comments", validBody)

				Expect(w.Code).To(Equal(status))
				Expect(decode(w)["code"]).To(Equal(code))
			},
			Entry("missing room", fmt.Errorf("loading room 1: %w", model.ErrNotFound), http.StatusNotFound, "not_found"),
			Entry("bad author", fmt.Errorf("%w: author id is required", model.ErrInvalidInput), http.StatusBadRequest, "invalid_input"),
			Entry("state conflict", fmt.Errorf("%w: group is empty", model.ErrInvalidState), http.StatusConflict, "invalid_state"),
			Entry("oracle down", fmt.Errorf("classify: %w", model.ErrOracleUnavailable), http.StatusServiceUnavailable, "oracle_unavailable"),
			Entry("lock timeout", lock.ErrLockTimeout, http.StatusServiceUnavailable, "lock_timeout"),
			Entry("unknown failure", errors.New("disk on fire"), http.StatusInternalServerError, "internal"),
		)

		It("hides internal error detail", func() {
			svc.addCommentFn = func(context.Context, service.AddCommentInput) (service.IngestResult, error) {
				return service.IngestResult{}, errors.New("pq: password authentication failed")
			}

			w := serve(http.MethodPost, "/rooms/1/comments", validBody)

			Expect(w.Body.String()).NotTo(ContainSubstring("password"))
		})
	})

	Describe("ListGroups", func() {
		It("passes the stance filter through", func() {
			var got *model.Stance
			svc.listGroupsFn = func(_ context.Context, _ int64, stance *model.Stance) ([]model.Group, error) {
				got = stance
				return []model.Group{{ID: 1, Stance: model.StanceAgainst, CommentIDs: []int64{2}}}, nil
			}

			w := serve(http.MethodGet, "/rooms/5/groups?stance=against", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).NotTo(BeNil())
			Expect(*got).To(Equal(model.StanceAgainst))
			Expect(decode(w)["groups"]).To(HaveLen(1))
		})

		It("lists without a filter and renders an empty array", func() {
			var got *model.Stance
			svc.listGroupsFn = func(_ context.Context, _ int64, stance *model.Stance) ([]model.Group, error) {
				got = stance
				return nil, nil
			}

			w := serve(http.MethodGet, "/rooms/5/groups", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(BeNil())
			Expect(w.Body.String()).To(ContainSubstring(`"groups":[]`))
		})

		It("rejects an unknown stance filter", func() {
			w := serve(http.MethodGet, "/rooms/5/groups?stance=maybe", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	It("forwards the search query", func() {
		var gotRoom int64
		var gotQuery string
		svc.searchGroupsFn = func(_ context.Context, roomID int64, q string) ([]model.Group, error) {
			gotRoom, gotQuery = roomID, q
			return []model.Group{{ID: 4}}, nil
		}

		w := serve(http.MethodGet, "/rooms/8/groups/search?q=solar+cost", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gotRoom).To(Equal(int64(8)))
		Expect(gotQuery).To(Equal("solar cost"))
	})

	Describe("Relink", func() {
		It("runs inline by default", func() {
			svc.relinkRoomFn = func(context.Context, int64) (clustering.RelinkResult, error) {
				return clustering.RelinkResult{UpdatedCount: 2, SkippedCount: 1}, nil
			}

			w := serve(http.MethodPost, "/rooms/3/relink", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["updated_count"]).To(BeEquivalentTo(2))
			Expect(resp["skipped_count"]).To(BeEquivalentTo(1))
		})

		It("enqueues when async is requested", func() {
			svc.relinkRoomFn = func(context.Context, int64) (clustering.RelinkResult, error) {
				Fail("inline relink must not run")
				return clustering.RelinkResult{}, nil
			}
			svc.enqueueRelinkFn = func(_ context.Context, roomID int64) (string, error) {
				Expect(roomID).To(Equal(int64(3)))
				return "1-0", nil
			}

			w := serve(http.MethodPost, "/rooms/3/relink?async=true", nil)

			Expect(w.Code).To(Equal(http.StatusAccepted))
			resp := decode(w)
			Expect(resp["enqueued"]).To(BeTrue())
			Expect(resp["message_id"]).To(Equal("1-0"))
		})

		It("returns 409 when async relink is not configured", func() {
			svc.enqueueRelinkFn = func(context.Context, int64) (string, error) {
				return "", service.ErrAsyncRelinkDisabled
			}

			w := serve(http.MethodPost, "/rooms/3/relink?async=true", nil)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	It("renders counter status rows", func() {
		title := "Wind is unreliable"
		svc.counterStatusFn = func(context.Context, int64) ([]service.CounterStatus, error) {
			return []service.CounterStatus{
				{GroupID: 1, Title: "Wind works", Stance: model.StanceFor, CommentCount: 2, CounterGroupID: int64Ptr(2), CounterGroupTitle: &title},
				{GroupID: 3, Title: "Empty", Stance: model.StanceFor},
			}, nil
		}

		w := serve(http.MethodGet, "/rooms/1/counter-status", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		rows := decode(w)["groups"].([]any)
		Expect(rows).To(HaveLen(2))
		first := rows[0].(map[string]any)
		Expect(first["group_id"]).To(Equal("1"))
		Expect(first["counter_group_id"]).To(Equal("2"))
		Expect(first["counter_group_title"]).To(Equal(title))
		Expect(rows[1].(map[string]any)["counter_group_id"]).To(BeNil())
	})

	Describe("RegenerateGroup", func() {
		It("returns the regenerated group", func() {
			svc.regenerateGroupFn = func(_ context.Context, id int64) (model.Group, error) {
				return model.Group{ID: id, Title: "Fresh title", CommentIDs: []int64{1, 2}}, nil
			}

			w := serve(http.MethodPost, "/groups/11/regenerate", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["title"]).To(Equal("Fresh title"))
		})

		It("returns 409 for an empty group", func() {
			svc.regenerateGroupFn = func(context.Context, int64) (model.Group, error) {
				return model.Group{}, fmt.Errorf("%w: group 11 has no comments", model.ErrInvalidState)
			}

			w := serve(http.MethodPost, "/groups/11/regenerate", nil)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	It("renders counter analysis with both groups", func() {
		svc.counterAnalysisFn = func(context.Context, int64) (service.CounterAnalysis, error) {
			return service.CounterAnalysis{
				CounterGroup:   &model.Group{ID: 2},
				SuggestedGroup: &model.Group{ID: 2},
				Confidence:     0.9,
				Reasoning:      "direct rebuttal",
				IsStillValid:   true,
			}, nil
		}

		w := serve(http.MethodGet, "/groups/1/counter-analysis", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp["is_still_valid"]).To(BeTrue())
		Expect(resp["confidence"]).To(BeNumerically("~", 0.9))
		Expect(resp["counter_group"].(map[string]any)["id"]).To(Equal("2"))
	})

	It("renders null counter groups when unlinked", func() {
		svc.counterAnalysisFn = func(context.Context, int64) (service.CounterAnalysis, error) {
			return service.CounterAnalysis{IsStillValid: true}, nil
		}

		w := serve(http.MethodGet, "/groups/1/counter-analysis", nil)

		resp := decode(w)
		Expect(resp).To(HaveKeyWithValue("counter_group", BeNil()))
		Expect(resp).To(HaveKeyWithValue("suggested_group", BeNil()))
	})

	It("lists oracle calls", func() {
		svc.listOracleCallsFn = func(context.Context, int64) ([]model.OracleCall, error) {
			return []model.OracleCall{{ID: 1, Stage: model.OracleStageSummarize, Model: "gpt-4o-mini", LatencyMs: 120}}, nil
		}

		w := serve(http.MethodGet, "/groups/1/oracle-calls", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		calls := decode(w)["calls"].([]any)
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].(map[string]any)["stage"]).To(Equal("summarize"))
	})
})
