package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a globally-unique id with a millisecond time prefix, so ids
// sort roughly by creation time while staying collision-free across writers.
func NewID() string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}
