package upload

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"
)

const maxRandomSuffix = 1_000_000_000

// Namer generates stored filenames of the form {field}_{unixMillis}-{random}{ext}.
type Namer struct {
	now    func() time.Time
	random func() int64
}

func NewNamer() *Namer {
	return &Namer{
		now:    time.Now,
		random: func() int64 { return rand.Int63n(maxRandomSuffix + 1) },
	}
}

func (n *Namer) Name(field, originalName string) string {
	return fmt.Sprintf("%s_%d-%d%s", field, n.now().UnixMilli(), n.random(), Ext(originalName))
}

// Ext is the extension of name's base, or "" when the base is only dots and
// extension (".png", "..").
func Ext(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == base || strings.Trim(base, ".") == "" {
		return ""
	}
	return ext
}
