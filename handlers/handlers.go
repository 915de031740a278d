package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pricewatch/models"
	"pricewatch/repository"
	"pricewatch/scheduler"
	"pricewatch/scraper"

	"github.com/gorilla/mux"
)

type Handlers struct {
	urlRepo      *repository.URLRepository
	alertRepo    *repository.AlertRepository
	choiceRepo   *repository.ChoiceRepository
	extractor    *scraper.Extractor
	priceChecker *scheduler.PriceChecker
	taskManager  *scheduler.TaskManager
}

func NewHandlers(urlRepo *repository.URLRepository, alertRepo *repository.AlertRepository, choiceRepo *repository.ChoiceRepository, extractor *scraper.Extractor, priceChecker *scheduler.PriceChecker) *Handlers {
	handlers := &Handlers{
		urlRepo:      urlRepo,
		alertRepo:    alertRepo,
		choiceRepo:   choiceRepo,
		extractor:    extractor,
		priceChecker: priceChecker,
	}

	// Async check-now path gets 5 workers
	handlers.taskManager = scheduler.NewTaskManager(handlers.performCheck, 5)

	return handlers
}

// Close shuts down the async task workers
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// performCheck runs one extraction pass for a tracked URL (used by TaskManager)
func (h *Handlers) performCheck(urlID int) (*models.ProductRecord, error) {
	url, err := h.urlRepo.GetURLByID(urlID)
	if err != nil {
		return nil, fmt.Errorf("failed to get URL details: %v", err)
	}
	return h.priceChecker.CheckURL(*url), nil
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "pricewatch",
		"version":   "1.0.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// AddURLToTrack adds a new URL to track. The first extraction runs inline
// so the response already carries a title and price.
func (h *Handlers) AddURLToTrack(w http.ResponseWriter, r *http.Request) {
	var req models.AddURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" || !strings.HasPrefix(req.URL, "http") {
		writeError(w, http.StatusBadRequest, "A valid http(s) URL is required")
		return
	}

	record := h.extractor.ExtractProduct(r.Context(), req.URL)

	trackedURL, err := h.urlRepo.AddURLToTrack(req.URL, record.Title)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if err := h.urlRepo.UpdateFromRecord(trackedURL.ID, record); err != nil {
		log.Printf("Failed to store first extraction for %s: %v", req.URL, err)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"tracked_url": trackedURL,
		"extraction":  record,
	})
}

// GetTrackedURLs returns all tracked URLs
func (h *Handlers) GetTrackedURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := h.urlRepo.GetTrackedURLs()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tracked URLs")
		return
	}
	writeJSON(w, http.StatusOK, urls)
}

// GetURLDetails returns one tracked URL
func (h *Handlers) GetURLDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	url, err := h.urlRepo.GetURLByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, url)
}

// DeleteTrackedURL stops tracking a URL
func (h *Handlers) DeleteTrackedURL(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.urlRepo.DeleteTrackedURL(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CheckPriceNow runs a synchronous extraction for a tracked URL
func (h *Handlers) CheckPriceNow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	record, err := h.performCheck(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// CheckPriceNowAsync queues an extraction and returns a task id to poll
func (h *Handlers) CheckPriceNowAsync(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.urlRepo.GetURLByID(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	task := h.taskManager.SubmitTask(id)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTaskStatus returns the state of an async extraction task
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	task, exists := h.taskManager.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GetTaskStats returns task manager statistics
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.taskManager.GetStats())
}

// ExtractAdhoc extracts a product record for any URL without tracking it
func (h *Handlers) ExtractAdhoc(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" || !strings.HasPrefix(rawURL, "http") {
		writeError(w, http.StatusBadRequest, "A valid url query parameter is required")
		return
	}

	record := h.extractor.ExtractProduct(r.Context(), rawURL)
	writeJSON(w, http.StatusOK, record)
}

// HandleUserChoice stores the user's pick among the exposed price options
func (h *Handlers) HandleUserChoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UserChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChosenPrice <= 0 {
		writeError(w, http.StatusBadRequest, "chosen_price must be positive")
		return
	}

	url, err := h.urlRepo.GetURLByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.choiceRepo.SaveChoice(id, req.ChosenPrice, req.ChosenText); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Reflect the override in the stored price immediately.
	record := &models.ProductRecord{
		URL:       url.URL,
		Title:     url.Title,
		Currency:  url.Currency,
		SiteType:  url.SiteType,
		CheckedAt: time.Now(),
	}
	record.SetPrice(req.ChosenPrice)
	if err := h.urlRepo.UpdateFromRecord(id, record); err != nil {
		log.Printf("Failed to apply price choice for URL %d: %v", id, err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "saved", "chosen_price": req.ChosenPrice})
}

// ClearUserChoice removes a manual price override
func (h *Handlers) ClearUserChoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.choiceRepo.ClearChoice(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// SetPriceAlert creates a target-price alert for a tracked URL
func (h *Handlers) SetPriceAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.SetAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TargetPrice <= 0 {
		writeError(w, http.StatusBadRequest, "target_price must be positive")
		return
	}

	if _, err := h.urlRepo.GetURLByID(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	alert, err := h.alertRepo.SetPriceAlert(id, req.TargetPrice, req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

// GetPriceAlerts returns the alerts for a tracked URL
func (h *Handlers) GetPriceAlerts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	alerts, err := h.alertRepo.GetPriceAlerts(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// DeletePriceAlert deletes a price alert
func (h *Handlers) DeletePriceAlert(w http.ResponseWriter, r *http.Request) {
	alertID, err := strconv.Atoi(mux.Vars(r)["alertId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	if err := h.alertRepo.DeletePriceAlert(alertID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid URL ID")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
