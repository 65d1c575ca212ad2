package download

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ymelamed/heblex/models"
	"github.com/ymelamed/heblex/pkg/release"
)

// DownloadAction fetches a prebuilt index database instead of running
// ingestion locally.
func DownloadAction(c *cli.Context) error {
	dest := c.String("out")
	if dest == "" {
		dest = models.LoadStoreConfig().IndexDBPath
	}

	url := c.String("url")
	fmt.Printf("Downloading %s\n", url)

	if err := release.NewDownloader().Download(c.Context, url, dest); err != nil {
		return err
	}

	fmt.Printf("Prebuilt index saved to %s\n", dest)
	return nil
}
