package models

import (
	"time"

	"github.com/google/uuid"
)

// ConfigUpdatedEvent публикуется в fanout exchange после успешного обновления
// конфигурации. Остальные инстансы сбрасывают кэш, не дожидаясь истечения TTL.
type ConfigUpdatedEvent struct {
	ConfigID  uuid.UUID `json:"config_id"`
	Version   int       `json:"version"`
	ChangedBy uuid.UUID `json:"changed_by"`
	UpdatedAt time.Time `json:"updated_at"`
}
