package restore

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ymelamed/heblex/internal/common"
	"github.com/ymelamed/heblex/pkg/backup"
	"github.com/ymelamed/heblex/pkg/db"
)

// RestoreAction replays JSON backups into a target index database.
// Usage: heblex restore <files...> <target-db>
//        heblex restore --dir <dir> <target-db>
func RestoreAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	dir := c.String("dir")
	if dir != "" {
		if c.NArg() != 1 {
			return fmt.Errorf("usage: heblex restore --dir <dir> <target-db>")
		}
	} else if c.NArg() < 2 {
		return fmt.Errorf("usage: heblex restore <files...> <target-db>")
	}

	args := c.Args().Slice()
	targetPath := args[len(args)-1]

	store, err := db.Open(targetPath)
	if err != nil {
		return fmt.Errorf("failed to open target database: %w", err)
	}
	defer store.Close()

	var restored int
	if dir != "" {
		restored, err = backup.RestoreDir(store, logger, dir)
	} else {
		restored, err = backup.Restore(store, logger, args[:len(args)-1]...)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Restored %d entries into %s\n", restored, targetPath)
	return nil
}
