// Command corkboard is a local kanban board backed by SQLite.
package main

import "github.com/mesh-intelligence/corkboard/internal/cli"

func main() {
	cli.Execute()
}
