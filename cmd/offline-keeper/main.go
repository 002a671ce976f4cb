package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-offline-keeper/internal/cli"
	"github.com/MKhiriev/go-offline-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	root := cli.NewRootCommand(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "offline-keeper: %v\n", err)
		os.Exit(1)
	}
}
