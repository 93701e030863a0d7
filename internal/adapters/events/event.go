// Package events consumes station catalog change notifications from Kafka.
package events

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
	OpReload = "reload"
)

// Event announces that the station catalog changed upstream.
type Event struct {
	Version    int       `json:"version"`
	Op         string    `json:"op"`
	StationIDs []string  `json:"station_ids,omitempty"`
	TS         time.Time `json:"ts"`
	Source     string    `json:"source,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return errors.New("version must be 1")
	}
	switch e.Op {
	case OpUpsert, OpDelete:
		if len(e.StationIDs) == 0 {
			return fmt.Errorf("op %s requires station_ids", e.Op)
		}
		for _, id := range e.StationIDs {
			if strings.TrimSpace(id) == "" {
				return errors.New("station_ids must not contain empty ids")
			}
		}
	case OpReload:
	default:
		return errors.New("op must be upsert|delete|reload")
	}
	if e.TS.IsZero() {
		return errors.New("ts is required")
	}
	return nil
}
