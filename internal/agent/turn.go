package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/kingabzpro/RegRadar/internal/logging"
)

// TurnState enumerates the per-message state machine. Idle is both the
// initial and terminal state of every turn.
type TurnState int

const (
	StateIdle TurnState = iota
	StateClassifyIntent
	StateGeneralChat
	StateExtractParams
	StateRetrieve
	StateAugmentMemoryLookup
	StateSynthesize
	StatePersistMemory
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateClassifyIntent:
		return "ClassifyIntent"
	case StateGeneralChat:
		return "GeneralChat"
	case StateExtractParams:
		return "ExtractParams"
	case StateRetrieve:
		return "Retrieve"
	case StateAugmentMemoryLookup:
		return "AugmentMemoryLookup"
	case StateSynthesize:
		return "Synthesize"
	case StatePersistMemory:
		return "PersistMemory"
	default:
		return "Unknown"
	}
}

// TurnEvent is one observable step of a running turn. Exactly one of
// Status and Fragment is meaningful per event; the final event has
// Done set with the total elapsed time.
type TurnEvent struct {
	State    TurnState
	Status   string
	Fragment *Fragment
	Result   *TurnResult
	Elapsed  time.Duration
	Done     bool
}

// persistTimeout bounds the fire-and-forget memory write.
const persistTimeout = 30 * time.Second

// RunTurn drives one complete turn for a message and streams its
// progress. The channel closes when the turn reaches Idle. Every
// failure inside a state degrades to a continuation; cancellation
// between fragments ends the turn early but still closes cleanly.
// Memory persistence is spawned and not awaited: the next turn's
// lookup is not guaranteed to see this turn's record.
func (a *Agent) RunTurn(ctx context.Context, message, userID string) <-chan TurnEvent {
	events := make(chan TurnEvent, 16)

	go func() {
		defer close(events)
		startTime := time.Now()

		finish := func() {
			events <- TurnEvent{State: StateIdle, Done: true, Elapsed: time.Since(startTime)}
		}

		emit := func(ev TurnEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		logging.Agent("Turn start: user=%s message_len=%d", userID, len(message))

		if !emit(TurnEvent{State: StateClassifyIntent, Status: "Classifying query..."}) {
			finish()
			return
		}

		if !a.IsRegulatoryQuery(ctx, message) {
			if !emit(TurnEvent{State: StateGeneralChat, Status: "Processing general query..."}) {
				finish()
				return
			}
			a.streamInto(ctx, StateGeneralChat, a.GeneralChat(ctx, message), events)
			finish()
			return
		}

		tool := DetermineIntendedTool(message)
		if !emit(TurnEvent{
			State:  StateExtractParams,
			Status: fmt.Sprintf("Using %s to analyze your query...", tool.Name()),
		}) {
			finish()
			return
		}

		query := a.ExtractParameters(ctx, message)
		if !emit(TurnEvent{
			State: StateRetrieve,
			Status: fmt.Sprintf("Parameters extracted. Industry: %s, Region: %s, Keywords: %s. Executing %s...",
				query.Industry, query.Region, query.Keywords, tool.Name()),
		}) {
			finish()
			return
		}

		aggregate, err := a.retriever.Retrieve(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				finish()
				return
			}
			aggregate = &CrawlResults{}
		}

		if !emit(TurnEvent{
			State:  StateAugmentMemoryLookup,
			Status: fmt.Sprintf("Found %d regulatory updates", aggregate.TotalFound),
		}) {
			finish()
			return
		}

		records := a.lookupMemory(ctx, userID, message)

		result := &TurnResult{
			Tool:          tool,
			Query:         query,
			Aggregate:     aggregate,
			MemoryRecords: records,
		}
		if !emit(TurnEvent{
			State:  StateSynthesize,
			Status: "Generating Compliance Report...",
			Result: result,
		}) {
			finish()
			return
		}

		response := a.streamInto(ctx, StateSynthesize, a.GenerateReport(ctx, query, aggregate, records), events)

		if response != "" && ctx.Err() == nil {
			emit(TurnEvent{State: StatePersistMemory, Status: "Saving to memory..."})
			go func() {
				pctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
				defer cancel()
				a.persistMemory(pctx, userID, message, response)
			}()
		}

		logging.Agent("Turn done: user=%s elapsed=%v", userID, time.Since(startTime))
		finish()
	}()

	return events
}

// streamInto forwards fragments to the event channel, returning the
// concatenated text. Stops early on cancellation, draining the source.
func (a *Agent) streamInto(ctx context.Context, state TurnState, fragments <-chan Fragment, events chan<- TurnEvent) string {
	var full []byte
	for frag := range fragments {
		full = append(full, frag.Text...)
		select {
		case events <- TurnEvent{State: state, Fragment: &frag}:
		case <-ctx.Done():
			for range fragments {
			}
			return string(full)
		}
	}
	return string(full)
}
