// Command devkit bundles the repository tooling: directory similarity
// reports, WebLLM asset downloads and Telegram release posts.
package main

import (
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
