package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmed-hamed0/sani3y.com/api"
	"github.com/ahmed-hamed0/sani3y.com/internal/ratings"
	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository/mock"
	"github.com/gorilla/mux"
)

func newCraftsmenHandler(m *mock.Mocks) *api.CraftsmenHandler {
	rt := ratings.NewService(m.Reviews, m.Profiles, nil)
	return api.NewCraftsmenHandler(m.Profiles, m.Craftsmen, rt)
}

func TestGetCraftsman(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	seedMarketplace(t, m)
	if err := m.Craftsmen.CreateCraftsmanDetails(ctx, &models.CraftsmanDetails{ProfileID: "craft-1", Specialty: "plumbing"}); err != nil {
		t.Fatalf("seed details: %v", err)
	}
	if err := m.Reviews.CreateReview(ctx, &models.Review{ID: "r1", ReviewerID: "client-1", ReviewedID: "craft-1", Rating: 4, IsPublic: true}); err != nil {
		t.Fatalf("seed review: %v", err)
	}
	handler := newCraftsmenHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/v1/craftsmen/craft-1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "craft-1"})
	w := httptest.NewRecorder()
	handler.GetCraftsman(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Profile *models.Profile          `json:"profile"`
		Details *models.CraftsmanDetails `json:"details"`
		Rating  ratings.Summary          `json:"rating"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Profile == nil || resp.Profile.ID != "craft-1" {
		t.Fatalf("unexpected profile: %#v", resp.Profile)
	}
	if resp.Details == nil || resp.Details.Specialty != "plumbing" {
		t.Fatalf("unexpected details: %#v", resp.Details)
	}
	if resp.Rating.Count != 1 || resp.Rating.Average != 4 {
		t.Fatalf("unexpected rating: %+v", resp.Rating)
	}

	// a client profile is not addressable as a craftsman
	req = httptest.NewRequest(http.MethodGet, "/v1/craftsmen/client-1", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "client-1"})
	w = httptest.NewRecorder()
	handler.GetCraftsman(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListCraftsmenHandler(t *testing.T) {
	ctx := context.Background()
	m := mock.NewMocks()
	seedMarketplace(t, m)
	if err := m.Craftsmen.CreateCraftsmanDetails(ctx, &models.CraftsmanDetails{ProfileID: "craft-1", Specialty: "plumbing"}); err != nil {
		t.Fatalf("seed details: %v", err)
	}
	handler := newCraftsmenHandler(m)

	w := httptest.NewRecorder()
	handler.ListCraftsmen(w, httptest.NewRequest(http.MethodGet, "/v1/craftsmen?specialty=plumbing", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []models.JobParty `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "craft-1" {
		t.Fatalf("unexpected items: %#v", resp.Items)
	}

	// no matches still answers with an empty list
	w = httptest.NewRecorder()
	handler.ListCraftsmen(w, httptest.NewRequest(http.MethodGet, "/v1/craftsmen?specialty=welding", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Fatalf("expected empty items, got %#v", resp.Items)
	}
}
