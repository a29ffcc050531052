// Command wfdsourced runs the Wi-Fi Display source-side RTSP negotiation
// daemon.
package main

import (
	"fmt"
	"os"

	"github.com/go-wfd/wfdsource/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
