package repository

// Key layout of the key-value store. Stats live inside the user record;
// everything else is keyed per user and, where needed, per reward or day.
const (
	prefixUser        = "user:"
	prefixUsername    = "username:"
	prefixClaim       = "claim:"
	prefixRobot       = "robot:"
	prefixPurchases   = "purchases:"
	prefixSpend       = "spend:"
	prefixTasks       = "tasks:"
	prefixMembership  = "membership:"
	prefixWithdrawal  = "withdrawal:"
	prefixWithdrawals = "withdrawals:"
)

func userKey(id string) string              { return prefixUser + id }
func usernameKey(name string) string        { return prefixUsername + name }
func claimKey(userID, reward string) string { return prefixClaim + userID + ":" + reward }
func robotKey(userID string) string         { return prefixRobot + userID }
func purchasesKey(userID string) string     { return prefixPurchases + userID }
func spendKey(userID string) string         { return prefixSpend + userID }
func tasksKey(userID, day string) string    { return prefixTasks + userID + ":" + day }
func membershipKey(userID string) string    { return prefixMembership + userID }
func withdrawalKey(id string) string        { return prefixWithdrawal + id }
func withdrawalsKey(userID string) string   { return prefixWithdrawals + userID }
