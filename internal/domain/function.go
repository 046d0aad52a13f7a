// Package domain holds the data types shared across the control plane:
// function declarations, their triggers, and the runtime records that tie
// a declaration to an on-disk environment.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Language identifies the toolchain a function's code is written against.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageShell      Language = "shell"
	// LanguageUnknown is accepted and persisted like any other declaration,
	// but RuntimeController.Setup refuses to start it: there is no
	// toolchain registered under this key.
	LanguageUnknown Language = "unknown"
)

func (l Language) IsValid() bool {
	switch l {
	case LanguageJavaScript, LanguageShell, LanguageUnknown:
		return true
	}
	return false
}

// HTTPMethod restricts which request method an HTTP trigger reacts to.
// MethodAll subscribes to every method on the route.
type HTTPMethod string

const (
	MethodAll     HTTPMethod = "ALL"
	MethodGet     HTTPMethod = "GET"
	MethodHead    HTTPMethod = "HEAD"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodDelete  HTTPMethod = "DELETE"
	MethodConnect HTTPMethod = "CONNECT"
	MethodOptions HTTPMethod = "OPTIONS"
	MethodTrace   HTTPMethod = "TRACE"
	MethodPatch   HTTPMethod = "PATCH"
)

// TriggerKind distinguishes the two binding mechanisms a function may have.
type TriggerKind string

const (
	TriggerNone     TriggerKind = "none"
	TriggerHTTP     TriggerKind = "http"
	TriggerInterval TriggerKind = "interval"
)

// Trigger binds a function to either an HTTP route or a cron schedule.
// Exactly one of Method/Cron is meaningful, selected by Kind.
type Trigger struct {
	Kind   TriggerKind `json:"kind"`
	Method HTTPMethod  `json:"method,omitempty"`
	Cron   string      `json:"cron,omitempty"`
}

func NoneTrigger() Trigger { return Trigger{Kind: TriggerNone} }

func HTTPTrigger(method HTTPMethod) Trigger {
	if method == "" {
		method = MethodAll
	}
	return Trigger{Kind: TriggerHTTP, Method: method}
}

func IntervalTrigger(cronExpr string) Trigger {
	return Trigger{Kind: TriggerInterval, Cron: cronExpr}
}

// FunctionDeclaration is the user-supplied description of a function: its
// name, its code, the language it's written in and the trigger that should
// dispatch events to it. Declarations are the unit FunctionStore persists.
type FunctionDeclaration struct {
	Name     string   `json:"name"`
	Language Language `json:"language"`
	Code     string   `json:"code"`
	Trigger  Trigger  `json:"trigger"`
}

func (d *FunctionDeclaration) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("function name must not be empty")
	}
	if !d.Language.IsValid() {
		return fmt.Errorf("unknown language %q", d.Language)
	}
	switch d.Trigger.Kind {
	case TriggerNone, TriggerHTTP:
	case TriggerInterval:
		if d.Trigger.Cron == "" {
			return fmt.Errorf("interval trigger requires a cron expression")
		}
	default:
		return fmt.Errorf("unknown trigger kind %q", d.Trigger.Kind)
	}
	return nil
}

// FunctionRecord is a FunctionDeclaration plus the identifiers the runtime
// assigns to it: a stable environment id (survives re-saves of the same
// name) and bookkeeping timestamps.
type FunctionRecord struct {
	Declaration   FunctionDeclaration `json:"declaration"`
	EnvironmentID uuid.UUID           `json:"environment_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (r *FunctionRecord) Name() string      { return r.Declaration.Name }
func (r *FunctionRecord) Language() Language { return r.Declaration.Language }
func (r *FunctionRecord) Code() string      { return r.Declaration.Code }
func (r *FunctionRecord) TriggerOf() Trigger { return r.Declaration.Trigger }

// RawFunctionInput is handed to a toolchain's Execute step: the raw request
// payload plus identifying metadata the sentinel protocol may echo back.
type RawFunctionInput struct {
	RequestID string          `json:"request_id"`
	Payload   json.RawMessage `json:"payload"`
}

// RawFunctionOutput is the sentinel-decoded result of one invocation: the
// key→bytes mapping OutputParser extracted from a toolchain's stdout.
type RawFunctionOutput map[string][]byte

// InvokeResponse is what RuntimeFacade.FunctionCall returns to a caller.
type InvokeResponse struct {
	RequestID  string            `json:"request_id"`
	Output     map[string]string `json:"output"`
	DurationMs int64             `json:"duration_ms"`
}
