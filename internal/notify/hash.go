package notify

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"swipehire/internal/common"
)

const domainSignal = "swipehire/signal/v2"

// StateKey identifies "actor was told about this entity reaching this state".
// Fields are separated by a null byte so no two inputs share an encoding.
func StateKey(actorID common.UUID, change Change) string {
	h := sha256.New()
	parts := []string{
		domainSignal,
		actorID.String(),
		change.Entity,
		strconv.FormatInt(change.CreatedAt.UnixNano(), 10),
		change.State,
		strconv.FormatInt(change.Version, 10),
	}
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0x00})
	}
	return hex.EncodeToString(h.Sum(nil))
}
