// Package briqtest provides an in-memory fake of the Briq platform API for
// tests.
package briqtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/elusion/briq-go/internal/constants"
	"github.com/elusion/briq-go/pkg/briq"
)

const defaultPerPage = 20

// Server is a running fake API. Every route except the health check requires
// the bearer key passed to NewServer.
type Server struct {
	*httptest.Server

	apiKey   string
	requests atomic.Int64

	mu         sync.Mutex
	workspaces map[string]*briq.Workspace
	campaigns  map[string]*briq.Campaign
	logs       []briq.MessageLog
	history    []briq.MessageHistory
}

// NewServer starts a fake API accepting apiKey. Callers must Close it.
func NewServer(apiKey string) *Server {
	s := &Server{
		apiKey:     apiKey,
		workspaces: make(map[string]*briq.Workspace),
		campaigns:  make(map[string]*briq.Campaign),
	}

	s.Server = httptest.NewServer(s.Router())

	return s
}

// Router builds the chi router serving the fake API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.count)

	r.Get(constants.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "healthy", map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route(constants.WorkspacesPath, func(r chi.Router) {
			r.Post("/", s.createWorkspace)
			r.Get("/", s.listWorkspaces)
			r.Get("/{id}", s.getWorkspace)
			r.Put("/{id}", s.updateWorkspace)
			r.Delete("/{id}", s.deleteWorkspace)
		})

		r.Route(constants.CampaignsPath, func(r chi.Router) {
			r.Post("/", s.createCampaign)
			r.Get("/", s.listCampaigns)
			r.Get("/{id}", s.getCampaign)
			r.Put("/{id}", s.updateCampaign)
			r.Delete("/{id}", s.deleteCampaign)
		})

		r.Post(constants.MessagesInstantPath, s.sendInstant)
		r.Post(constants.MessagesCampaignPath, s.sendCampaign)
		r.Get(constants.MessagesLogsPath, s.messageLogs)
		r.Get(constants.MessagesHistoryPath, s.messageHistory)
	})

	return r
}

// Requests returns the number of requests received so far.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(constants.HeaderAuthorization) != "Bearer "+s.apiKey {
			writeFailure(w, http.StatusUnauthorized, "invalid API key", nil)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// Workspaces

func (s *Server) createWorkspace(w http.ResponseWriter, r *http.Request) {
	var input briq.WorkspaceCreate
	if !decodeBody(w, r, &input) {
		return
	}

	if strings.TrimSpace(input.Name) == "" {
		writeFailure(w, http.StatusUnprocessableEntity, "validation failed", []briq.ErrorDetail{requiredDetail("name")})

		return
	}

	now := timestamp()
	workspace := &briq.Workspace{
		Resource:    briq.Resource{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:        input.Name,
		Description: input.Description,
	}

	s.mu.Lock()
	s.workspaces[workspace.ID] = workspace
	created := *workspace
	s.mu.Unlock()

	writeEnvelope(w, http.StatusCreated, "Workspace created", created)
}

func (s *Server) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.Lock()
	items := make([]briq.Workspace, 0, len(s.workspaces))

	for _, workspace := range s.workspaces {
		if search != "" && !strings.Contains(strings.ToLower(workspace.Name), search) {
			continue
		}

		items = append(items, *workspace)
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt) ||
			(items[i].CreatedAt.Equal(items[j].CreatedAt) && items[i].ID < items[j].ID)
	})

	writeEnvelope(w, http.StatusOK, "", paginate(r, items))
}

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	workspace, ok := s.workspaces[chi.URLParam(r, "id")]

	var found briq.Workspace
	if ok {
		found = *workspace
	}
	s.mu.Unlock()

	if !ok {
		writeFailure(w, http.StatusNotFound, "workspace not found", nil)

		return
	}

	writeEnvelope(w, http.StatusOK, "", found)
}

func (s *Server) updateWorkspace(w http.ResponseWriter, r *http.Request) {
	var input briq.WorkspaceUpdate
	if !decodeBody(w, r, &input) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	workspace, ok := s.workspaces[chi.URLParam(r, "id")]
	if !ok {
		writeFailure(w, http.StatusNotFound, "workspace not found", nil)

		return
	}

	if input.Name != nil {
		workspace.Name = *input.Name
	}

	if input.Description != nil {
		workspace.Description = *input.Description
	}

	workspace.UpdatedAt = laterOf(workspace.CreatedAt, timestamp())

	writeEnvelope(w, http.StatusOK, "Workspace updated", *workspace)
}

func (s *Server) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.workspaces[id]
	delete(s.workspaces, id)
	s.mu.Unlock()

	if !ok {
		writeFailure(w, http.StatusNotFound, "workspace not found", nil)

		return
	}

	writeEnvelope(w, http.StatusOK, "Workspace deleted", nil)
}

// Campaigns

func (s *Server) createCampaign(w http.ResponseWriter, r *http.Request) {
	var input briq.CampaignCreate
	if !decodeBody(w, r, &input) {
		return
	}

	var details []briq.ErrorDetail

	if strings.TrimSpace(input.WorkspaceID) == "" {
		details = append(details, requiredDetail("workspace_id"))
	}

	if strings.TrimSpace(input.Name) == "" {
		details = append(details, requiredDetail("name"))
	}

	if len(details) > 0 {
		writeFailure(w, http.StatusUnprocessableEntity, "validation failed", details)

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workspaces[input.WorkspaceID]; !ok {
		writeFailure(w, http.StatusUnprocessableEntity, "validation failed", []briq.ErrorDetail{
			{Field: "workspace_id", Message: "workspace does not exist", Code: "not_found"},
		})

		return
	}

	now := timestamp()
	campaign := &briq.Campaign{
		Resource:    briq.Resource{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		WorkspaceID: input.WorkspaceID,
		Name:        input.Name,
		Description: input.Description,
		Status:      briq.CampaignStatusDraft,
		LaunchDate:  input.LaunchDate,
	}

	s.campaigns[campaign.ID] = campaign

	writeEnvelope(w, http.StatusCreated, "Campaign created", *campaign)
}

func (s *Server) listCampaigns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	workspaceID := query.Get("workspace_id")
	status := query.Get("status")

	s.mu.Lock()
	items := make([]briq.Campaign, 0, len(s.campaigns))

	for _, campaign := range s.campaigns {
		if workspaceID != "" && campaign.WorkspaceID != workspaceID {
			continue
		}

		if status != "" && campaign.Status != status {
			continue
		}

		items = append(items, *campaign)
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt) ||
			(items[i].CreatedAt.Equal(items[j].CreatedAt) && items[i].ID < items[j].ID)
	})

	writeEnvelope(w, http.StatusOK, "", paginate(r, items))
}

func (s *Server) getCampaign(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	campaign, ok := s.campaigns[chi.URLParam(r, "id")]

	var found briq.Campaign
	if ok {
		found = *campaign
	}
	s.mu.Unlock()

	if !ok {
		writeFailure(w, http.StatusNotFound, "campaign not found", nil)

		return
	}

	writeEnvelope(w, http.StatusOK, "", found)
}

func (s *Server) updateCampaign(w http.ResponseWriter, r *http.Request) {
	var input briq.CampaignUpdate
	if !decodeBody(w, r, &input) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, ok := s.campaigns[chi.URLParam(r, "id")]
	if !ok {
		writeFailure(w, http.StatusNotFound, "campaign not found", nil)

		return
	}

	if input.Name != nil {
		campaign.Name = *input.Name
	}

	if input.Description != nil {
		campaign.Description = *input.Description
	}

	if input.Status != nil {
		campaign.Status = *input.Status
	}

	if input.LaunchDate != nil {
		campaign.LaunchDate = input.LaunchDate
	}

	campaign.UpdatedAt = laterOf(campaign.CreatedAt, timestamp())

	writeEnvelope(w, http.StatusOK, "Campaign updated", *campaign)
}

func (s *Server) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.campaigns[id]
	delete(s.campaigns, id)
	s.mu.Unlock()

	if !ok {
		writeFailure(w, http.StatusNotFound, "campaign not found", nil)

		return
	}

	writeEnvelope(w, http.StatusOK, "Campaign deleted", nil)
}

// Messages

func (s *Server) sendInstant(w http.ResponseWriter, r *http.Request) {
	var input briq.InstantMessage
	if !decodeBody(w, r, &input) {
		return
	}

	if len(input.Recipients) == 0 {
		writeFailure(w, http.StatusUnprocessableEntity, "validation failed", []briq.ErrorDetail{requiredDetail("recipients")})

		return
	}

	s.mu.Lock()
	response := s.recordSend(input.Recipients, input.Content, input.SenderID, "")
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, "Message queued", response)
}

func (s *Server) sendCampaign(w http.ResponseWriter, r *http.Request) {
	var input briq.CampaignMessage
	if !decodeBody(w, r, &input) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[input.CampaignID]; !ok {
		writeFailure(w, http.StatusNotFound, "campaign not found", nil)

		return
	}

	response := s.recordSend([]string{input.GroupID}, input.Content, input.SenderID, input.CampaignID)

	writeEnvelope(w, http.StatusOK, "Campaign message queued", response)
}

// recordSend appends one log per recipient and one history entry. Callers
// hold s.mu.
func (s *Server) recordSend(recipients []string, content, senderID, campaignID string) briq.MessageResponse {
	now := timestamp()
	messageID := uuid.NewString()

	messages := make([]briq.Message, 0, len(recipients))

	for _, recipient := range recipients {
		resource := briq.Resource{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}

		messages = append(messages, briq.Message{
			Resource:   resource,
			Recipient:  recipient,
			Content:    content,
			SenderID:   senderID,
			CampaignID: campaignID,
			Status:     briq.MessageStatusQueued,
		})

		s.logs = append(s.logs, briq.MessageLog{
			Resource:   resource,
			MessageID:  messageID,
			Recipient:  recipient,
			Content:    content,
			SenderID:   senderID,
			CampaignID: campaignID,
			Status:     briq.MessageStatusQueued,
		})
	}

	s.history = append(s.history, briq.MessageHistory{
		Resource:   briq.Resource{ID: messageID, CreatedAt: now, UpdatedAt: now},
		Recipients: append([]string(nil), recipients...),
		Content:    content,
		SenderID:   senderID,
		CampaignID: campaignID,
		Status:     briq.MessageStatusQueued,
	})

	return briq.MessageResponse{
		MessageID:  messageID,
		Status:     briq.MessageStatusQueued,
		Recipients: len(recipients),
		CampaignID: campaignID,
		Messages:   messages,
	}
}

func (s *Server) messageLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	s.mu.Lock()
	items := make([]briq.MessageLog, 0, len(s.logs))

	for _, entry := range s.logs {
		if status := query.Get("status"); status != "" && string(entry.Status) != status {
			continue
		}

		if campaignID := query.Get("campaign_id"); campaignID != "" && entry.CampaignID != campaignID {
			continue
		}

		if recipient := query.Get("recipient"); recipient != "" && entry.Recipient != recipient {
			continue
		}

		items = append(items, entry)
	}
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, "", paginate(r, items))
}

func (s *Server) messageHistory(w http.ResponseWriter, r *http.Request) {
	campaignID := r.URL.Query().Get("campaign_id")

	s.mu.Lock()
	items := make([]briq.MessageHistory, 0, len(s.history))

	for _, entry := range s.history {
		if campaignID != "" && entry.CampaignID != campaignID {
			continue
		}

		items = append(items, entry)
	}
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, "", paginate(r, items))
}

// Helpers

func paginate[T any](r *http.Request, items []T) briq.PaginatedResponse[T] {
	page := positiveInt(r.URL.Query().Get("page"), 1)
	perPage := positiveInt(r.URL.Query().Get("per_page"), defaultPerPage)
	info := briq.NewPaginationInfo(page, perPage, len(items))

	start := (info.Page - 1) * info.PerPage
	if start > len(items) {
		start = len(items)
	}

	end := start + info.PerPage
	if end > len(items) {
		end = len(items)
	}

	return briq.PaginatedResponse[T]{Items: items[start:end], Pagination: info}
}

func positiveInt(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}

	return n
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(target)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)

		return false
	}

	return true
}

func requiredDetail(field string) briq.ErrorDetail {
	return briq.ErrorDetail{Field: field, Message: field + " is required", Code: "required"}
}

func timestamp() time.Time {
	return time.Now().UTC()
}

func laterOf(a, b time.Time) time.Time {
	if b.Before(a) {
		return a
	}

	return b
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	write(w, status, briq.Envelope[interface{}]{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string, details []briq.ErrorDetail) {
	write(w, status, briq.Envelope[interface{}]{Success: false, Message: message, Errors: details})
}

func write(w http.ResponseWriter, status int, envelope briq.Envelope[interface{}]) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}
