// snapsave captures a process memory dump to a directory that
// process_blob.LoadSnapshot can replay later: offline pointer hunting
// against a paused moment of the game.
//
//	snapsave -pid 1234 -output ./dumps/eldenring-boss
package main

import (
	"flag"
	"fmt"
	"os"

	"soulmem/process"
)

func main() {
	pidFlag := flag.Int("pid", 0, "process ID to attach to")
	outputFlag := flag.String("output", "", "output directory for the dump")
	flag.Parse()

	if *pidFlag == 0 || *outputFlag == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputFlag, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	proc, err := getProcess(process.ProcessID(*pidFlag))
	if err != nil {
		fmt.Printf("Error attaching to process %d: %v\n", *pidFlag, err)
		os.Exit(1)
	}
	defer proc.Close()

	fmt.Printf("Saving process %d to %s...\n", *pidFlag, *outputFlag)
	if err := proc.Save(*outputFlag); err != nil {
		fmt.Printf("Error saving dump: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Dump saved.")
}
