package models

import (
	"time"

	"github.com/google/uuid"
)

// PricingConfigHistory - append-only запись об изменении конфигурации.
// Создается автоматически в той же транзакции, что и само обновление.
// Хранит только реально изменившиеся поля (старые и новые значения).
type PricingConfigHistory struct {
	ID             uuid.UUID              `json:"id" db:"id"`
	ConfigID       uuid.UUID              `json:"config_id" db:"config_id"`
	ChangedFields  []string               `json:"changed_fields" db:"changed_fields"`
	ChangeReason   string                 `json:"change_reason" db:"change_reason"`
	PreviousValues map[string]interface{} `json:"previous_values" db:"previous_values"`
	NewValues      map[string]interface{} `json:"new_values" db:"new_values"`
	ChangedBy      uuid.UUID              `json:"changed_by" db:"changed_by"`
	ChangedAt      time.Time              `json:"changed_at" db:"changed_at"`
}
