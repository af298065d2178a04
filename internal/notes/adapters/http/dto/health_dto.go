package dto

import "gonotes/pkg/pool"

// HealthResponse - состояние сервиса и пула соединений.
type HealthResponse struct {
	Status string     `json:"status"`
	Pool   pool.Stats `json:"pool"`
	Error  string     `json:"error,omitempty"`
}
