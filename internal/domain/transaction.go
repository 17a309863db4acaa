package domain

import "time"

// Transaction types recorded in the spend log
const (
	TxRefuel        = "refuel"
	TxLevelUpgrade  = "level_upgrade"
	TxEnergyUpgrade = "energy_upgrade"
	TxRobotPurchase = "robot_purchase"
	TxWithdrawal    = "withdrawal"
	TxRefund        = "withdrawal_refund"
	TxAdminAdjust   = "admin_adjust"
)

type Transaction struct {
	UserID    string                 `json:"user_id"`
	Type      string                 `json:"type"`
	Amount    int64                  `json:"amount"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
