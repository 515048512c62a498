package engine

import "github.com/gridpilot/gridpilot/internal/protocol/planstream"

// Stats extends the server's end-of-run report with the locally measured
// wall-clock duration of the run. It is only ever produced from a stats
// event: a run that ends via blocked or error without one leaves the
// snapshot's Stats nil, meaning "unknown", not "zero".
type Stats struct {
	planstream.Stats
	DurationMs float64 `json:"durationMs"`
}
