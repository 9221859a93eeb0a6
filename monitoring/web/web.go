// Package web holds the page served by the EEPROM monitor.
package web

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevModeEnv names the variable that makes the monitor read its page from
// the source tree, so the page can be edited without rebuilding eepromctl.
const DevModeEnv = "EEPROM_MONITOR_DEV"

//go:embed dist/*
var dist embed.FS

// GetAssets returns the files of the monitor page.
func GetAssets() http.FileSystem {
	if liveAssets() {
		dir := sourceDist()
		log.Printf("monitor page served from %s", dir)

		return http.Dir(dir)
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		log.Panic(err)
	}

	return http.FS(sub)
}

func sourceDist() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		log.Panic("cannot locate the monitor sources")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}

func liveAssets() bool {
	on, err := strconv.ParseBool(os.Getenv(DevModeEnv))

	return err == nil && on
}
