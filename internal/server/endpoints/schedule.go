package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qpig0218/Rootplanner/internal/api"
	"github.com/qpig0218/Rootplanner/internal/schedule"
	"github.com/qpig0218/Rootplanner/internal/svcctx"
)

// DefaultMaxBodyBytes caps the schedule request body.
const DefaultMaxBodyBytes = 1 << 20

// Client-facing error messages.
const (
	msgProviderNotConfigured   = "Azure OpenAI is not configured; check the ENDPOINT_URL and AZURE_OPENAI_API_KEY environment variables."
	msgDeploymentNotConfigured = "Deployment name is missing; check the DEPLOYMENT_NAME environment variable."
	msgEmptyCaseDetails        = "Please provide enough visit and case details."
	msgProviderFailed          = "Failed to get a schedule from the AI service; please try again later."
	msgInvalidBody             = "Request body must be a JSON object with a string caseDetails field."
	msgBodyTooLarge            = "Request body is too large."
)

// ScheduleRequest is the request body for POST /api/schedule.
type ScheduleRequest struct {
	CaseDetails string `json:"caseDetails"`
}

// ScheduleEndpoint handles POST /api/schedule.
type ScheduleEndpoint struct {
	Planner      *schedule.Planner
	MaxBodyBytes int64
}

func (e *ScheduleEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/schedule", e.handler
}

// handler godoc
//
//	@Summary		Plan home visits
//	@Description	Relay case details to the completion provider and extract the visit schedule from the reply. A reply without a parseable JSON object still answers 200 with a null schedule.
//	@Tags			schedule
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ScheduleRequest	true	"Case details"
//	@Success		200		{object}	schedule.Result
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/schedule [post]
func (e *ScheduleEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	limit := e.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		svcctx.LoggerFrom(r.Context(), nil).Debug("invalid schedule request body", "error", err)
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if e.Planner == nil {
		writeError(w, http.StatusInternalServerError, msgProviderNotConfigured)
		return
	}

	result, err := e.Planner.Plan(r.Context(), req.CaseDetails)
	if err != nil {
		status, resp := errorResponse(err)
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// errorResponse maps planner errors to an HTTP status and body.
func errorResponse(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, schedule.ErrProviderNotConfigured):
		return http.StatusInternalServerError, ErrorResponse{Error: msgProviderNotConfigured}
	case errors.Is(err, schedule.ErrDeploymentNotConfigured):
		return http.StatusInternalServerError, ErrorResponse{Error: msgDeploymentNotConfigured}
	case errors.Is(err, schedule.ErrInvalidRequest):
		return http.StatusBadRequest, ErrorResponse{Error: msgEmptyCaseDetails}
	}
	if pe, ok := schedule.IsProviderError(err); ok {
		return http.StatusInternalServerError, ErrorResponse{Error: msgProviderFailed, Details: pe.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: msgProviderFailed, Details: err.Error()}
}

// ScheduleOutput is the CLI view of a schedule response.
type ScheduleOutput struct {
	Schedule    any    `json:"schedule" yaml:"schedule"`
	RawResponse string `json:"rawResponse" yaml:"rawResponse"`
}

func (e *ScheduleEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	var raw bool
	cmd := &cobra.Command{
		Use:   "schedule [case details...]",
		Short: "Request a home-visit schedule",
		Long: `Send case details to the server and print the extracted schedule.

Case details are read from the arguments, from --file, or from stdin
when --file is "-".

Examples:
  rootplanner api schedule "出發點: 衛生所 08:30; 王小明 台北市大安區 10:00 前"
  rootplanner api schedule -f case.txt
  cat case.txt | rootplanner api schedule -f - --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := readCaseDetails(cmd, file, args)
			if err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp struct {
				Schedule    json.RawMessage `json:"schedule"`
				RawResponse string          `json:"rawResponse"`
			}
			if err := client.Post(cmd.Context(), "/api/schedule", ScheduleRequest{CaseDetails: details}, &resp); err != nil {
				return err
			}

			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), resp.RawResponse)
				return nil
			}
			return api.Output(ScheduleOutput{
				Schedule:    scheduleView(resp.Schedule),
				RawResponse: resp.RawResponse,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `Read case details from a file ("-" for stdin)`)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the raw model reply")
	return cmd
}

// scheduleView prefers the typed schedule and falls back to a generic
// value when the model's object does not fit it.
func scheduleView(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if s, err := schedule.Decode(raw); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func readCaseDetails(cmd *cobra.Command, file string, args []string) (string, error) {
	var data []byte
	var err error
	switch {
	case file == "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	case file != "":
		data, err = os.ReadFile(file)
	default:
		return strings.Join(args, " "), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read case details: %w", err)
	}
	return string(data), nil
}
