package database

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewConversationID generates a conversation identifier in the widget's
// established format: "conv_" + unix milliseconds + "_" + nine random
// base36 characters. Collision avoidance is practical, not guaranteed.
func NewConversationID() string {
	var sb strings.Builder
	sb.WriteString("conv_")
	sb.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))
	sb.WriteByte('_')
	for range 9 {
		sb.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return sb.String()
}
