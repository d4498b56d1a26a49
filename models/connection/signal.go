package connection

const (
	CodeSessionID uint8 = iota
	CodeCreateGame
	CodeJoinGame

	// Server suggests a legal fleet the client may submit as is
	CodeRandomFleet
	CodeReady
	CodeMatchState
	CodeStartGame
	CodeAttack
	CodeEndGame
	CodeAbandon
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)

// Signal is the envelope every request frame starts with. Code is nil when
// the frame has no "code" field.
type Signal struct {
	Code *uint8 `json:"code"`
}
