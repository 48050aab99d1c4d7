package scaffold

import (
	"context"
	"fmt"
	"os"

	"github.com/bio-labs/bio/internal/catalog"
)

// CreateFromPrompt starts a new scaffold named name: it installs the demo
// scaffold into the project's scaffold directory under the new name and
// renames it. The target directory must not already hold files.
func CreateFromPrompt(ctx context.Context, in *Installer, demo catalog.Descriptor, root, name string) (*Installed, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	target := InstallDir(root, name)
	if entries, err := os.ReadDir(target); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("scaffold directory %s is not empty; remove existing files first", target)
	}

	inst, err := in.Install(ctx, demo, target)
	if err != nil {
		return nil, err
	}
	return Rename(inst, name)
}
