package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// IntentResponse — разобранный intent из API.
type IntentResponse struct {
	Type       string  `json:"type"`
	Symbol     string  `json:"symbol,omitempty"`
	Side       string  `json:"side,omitempty"`
	Quantity   float64 `json:"quantity,omitempty"`
	LimitPrice float64 `json:"limit_price,omitempty"`
}

// ValidationResponse — результат валидации из API.
type ValidationResponse struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// ExecutionResponse — отчёт об исполнении из API.
type ExecutionResponse struct {
	OrderID          string  `json:"order_id,omitempty"`
	Symbol           string  `json:"symbol,omitempty"`
	ExecutedQuantity float64 `json:"executed_quantity,omitempty"`
	ExecutedPrice    float64 `json:"executed_price,omitempty"`
	Attempts         int     `json:"attempts,omitempty"`
	Detail           string  `json:"detail,omitempty"`
}

// FailureResponse — причина отказа из API.
type FailureResponse struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// CommandResponse — команда из API.
type CommandResponse struct {
	ID              string              `json:"id"`
	Text            string              `json:"text"`
	Source          string              `json:"source,omitempty"`
	Priority        int                 `json:"priority"`
	Status          string              `json:"status"`
	Intent          *IntentResponse     `json:"intent,omitempty"`
	Validation      *ValidationResponse `json:"validation,omitempty"`
	Execution       *ExecutionResponse  `json:"execution,omitempty"`
	Failure         *FailureResponse    `json:"failure,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty"`
	CancelRequested bool                `json:"cancel_requested,omitempty"`
	CreatedAt       string              `json:"created_at"`
	FinishedAt      string              `json:"finished_at,omitempty"`
}

// QueueStatsResponse — статистика очереди из API.
type QueueStatsResponse struct {
	Size             int     `json:"size"`
	AveragePriority  float64 `json:"average_priority"`
	OldestAgeMs      int64   `json:"oldest_age_ms"`
	ProcessingActive bool    `json:"processing_active"`
}

// ScheduleResponse — schedule из API.
type ScheduleResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CommandText   string `json:"command_text"`
	Priority      int    `json:"priority"`
	CronExpr      string `json:"cron_expr,omitempty"`
	IntervalSec   int    `json:"interval_sec,omitempty"`
	Timezone      string `json:"timezone"`
	Enabled       bool   `json:"enabled"`
	NextDueAt     string `json:"next_due_at,omitempty"`
	LastRunAt     string `json:"last_run_at,omitempty"`
	LastCommandID string `json:"last_command_id,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// --- Request types ---

// SubmitCommandRequest — отправка команды.
type SubmitCommandRequest struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Priority int    `json:"priority,omitempty"`
}

// CreateScheduleRequest — создание schedule.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CommandText string `json:"command_text"`
	Priority    int    `json:"priority,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// UpdateScheduleRequest — обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CommandText *string `json:"command_text,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// ListCommandsOpts — параметры фильтрации команд.
type ListCommandsOpts struct {
	Status string
	Source string
	Limit  int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Tradomata API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Commands ---

// SubmitCommand отправляет команду движку.
func (c *Client) SubmitCommand(req SubmitCommandRequest) (*CommandResponse, error) {
	var command CommandResponse
	err := c.post("/api/v1/commands", req, &command)
	return &command, err
}

// GetCommand возвращает команду по ID.
func (c *Client) GetCommand(id string) (*CommandResponse, error) {
	var command CommandResponse
	err := c.get("/api/v1/commands/"+id, &command)
	return &command, err
}

// ConfirmCommand подтверждает команду в окне подтверждения.
func (c *Client) ConfirmCommand(id string) (*CommandResponse, error) {
	var command CommandResponse
	err := c.post("/api/v1/commands/"+id+"/confirm", nil, &command)
	return &command, err
}

// CancelCommand отменяет команду.
func (c *Client) CancelCommand(id string) (*CommandResponse, error) {
	var command CommandResponse
	err := c.post("/api/v1/commands/"+id+"/cancel", nil, &command)
	return &command, err
}

// ListCommands возвращает список команд с фильтрацией.
func (c *Client) ListCommands(opts ListCommandsOpts) ([]CommandResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Source != "" {
		params.Set("source", opts.Source)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var commands []CommandResponse
	err := c.list("/api/v1/commands", params, &commands)
	return commands, err
}

// QueueStats возвращает статистику приоритетной очереди.
func (c *Client) QueueStats() (*QueueStatsResponse, error) {
	var stats QueueStatsResponse
	err := c.get("/api/v1/queue/stats", &stats)
	return &stats, err
}

// --- Schedules ---

// ListSchedules возвращает schedules.
func (c *Client) ListSchedules() ([]ScheduleResponse, error) {
	var schedules []ScheduleResponse
	err := c.list("/api/v1/schedules", nil, &schedules)
	return schedules, err
}

// CreateSchedule создаёт schedule.
func (c *Client) CreateSchedule(req CreateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.post("/api/v1/schedules", req, &schedule)
	return &schedule, err
}

// GetSchedule возвращает schedule по ID.
func (c *Client) GetSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.get("/api/v1/schedules/"+id, &schedule)
	return &schedule, err
}

// UpdateSchedule обновляет schedule.
func (c *Client) UpdateSchedule(id string, req UpdateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.put("/api/v1/schedules/"+id, req, &schedule)
	return &schedule, err
}

// DeleteSchedule удаляет schedule.
func (c *Client) DeleteSchedule(id string) error {
	return c.delete("/api/v1/schedules/" + id)
}

// EnableSchedule включает schedule.
func (c *Client) EnableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": true}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// DisableSchedule выключает schedule.
func (c *Client) DisableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": false}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
