package main

import (
	"os"

	"github.com/AnnekeHeelsum/android-uploader/internal/cli"
)

func main() {
	os.Exit(cli.Run("uploadcfg", os.Args[1:]))
}
