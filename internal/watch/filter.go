package watch

import (
	"fmt"
	"os"

	"github.com/optiscan/optiscan/internal/contract"
)

// acceptChange decides whether a debounced change should be analyzed.
// Deletions, non-source files, and files outside the configured size bounds
// are skipped with a reason for the session stats.
func acceptChange(cfg *contract.Config, change FileChange) (bool, string) {
	if change.Op == FileOpRemove || change.Op == FileOpRename {
		return false, change.Op.String()
	}

	if !contract.IsSourceFile(change.Path) {
		return false, "not a source file"
	}

	info, err := os.Stat(change.Path)
	if err != nil {
		return false, "stat failed"
	}
	if info.IsDir() {
		return false, "directory"
	}
	if info.Size() < cfg.MinFileSize {
		return false, fmt.Sprintf("below %d bytes", cfg.MinFileSize)
	}
	if info.Size() > cfg.MaxFileSize {
		return false, fmt.Sprintf("above %d bytes", cfg.MaxFileSize)
	}

	return true, ""
}
