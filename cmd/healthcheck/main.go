// Command healthcheck probes the API root and exits non-zero unless it answers 200.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tiendaonline/storefront/internal/config"
)

func main() {
	cfg := config.Load()
	url := "http://localhost" + cfg.HTTPAddr + "/"
	if !strings.HasPrefix(cfg.HTTPAddr, ":") {
		url = "http://" + cfg.HTTPAddr + "/"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintln(os.Stderr, "healthcheck: status", resp.StatusCode)
		os.Exit(1)
	}
}
