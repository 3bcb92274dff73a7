// main.go - awrun: a reference host for the engine package
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	vm "github.com/anotherworld-vm/engine"
)

// loadStringTable parses an "id=text" per-line file into a vm.StringTable.
// An empty path returns an empty table: DrawString then fails with
// InvalidStringId for any id, which is a valid state for parts that never
// draw text.
func loadStringTable(path string) (vm.StringTable, error) {
	table := vm.StringTable{}
	if path == "" {
		return table, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idStr, text, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(idStr, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid string id %q: %w", idStr, err)
		}
		table[vm.StringId(id)] = text
	}
	return table, scanner.Err()
}

var gamePartNames = map[string]vm.GamePart{
	"copy-protection": vm.PartCopyProtection,
	"intro":           vm.PartIntroCinematic,
	"gameplay1":       vm.PartGameplay1,
	"gameplay2":       vm.PartGameplay2,
	"gameplay3":       vm.PartGameplay3,
	"gameplay4":       vm.PartGameplay4,
	"gameplay5":       vm.PartGameplay5,
	"final":           vm.PartFinal,
	"password":        vm.PartPasswordEntry,
}

// stdoutLogger implements vm.Logger with plain fmt.Printf lines.
type stdoutLogger struct{}

func (stdoutLogger) log(level, msg string, keyvals ...any) {
	fmt.Printf("[%s] %s %v\n", level, msg, keyvals)
}
func (l stdoutLogger) Debug(msg string, keyvals ...any) { l.log("debug", msg, keyvals...) }
func (l stdoutLogger) Info(msg string, keyvals ...any)  { l.log("info", msg, keyvals...) }
func (l stdoutLogger) Warn(msg string, keyvals ...any)  { l.log("warn", msg, keyvals...) }
func (l stdoutLogger) Error(msg string, keyvals ...any) { l.log("error", msg, keyvals...) }

func main() {
	dataDir := flag.String("data", "", "directory holding the BANK0x resource files")
	manifest := flag.String("manifest", "", "path to the resource manifest")
	stringsPath := flag.String("strings", "", "optional id=text string table file")
	partName := flag.String("part", "intro", "game part to start on: "+partNameList())
	sampleRate := flag.Int("sample-rate", 22050, "audio output sample rate, in Hz")
	flag.Parse()

	if *dataDir == "" || *manifest == "" {
		fmt.Println("Usage: awrun -data <dir> -manifest <path> [-strings <path>] [-part <name>]")
		os.Exit(1)
	}

	part, ok := gamePartNames[*partName]
	if !ok {
		fmt.Printf("Unknown game part %q. Choices: %s\n", *partName, partNameList())
		os.Exit(1)
	}

	repo, err := vm.NewFileRepository(*dataDir, *manifest)
	if err != nil {
		fmt.Printf("Failed to open resource repository: %v\n", err)
		os.Exit(1)
	}

	stringTable, err := loadStringTable(*stringsPath)
	if err != nil {
		fmt.Printf("Failed to load string table: %v\n", err)
		os.Exit(1)
	}

	host := newEbitenHost()
	config := vm.Config{SampleRate: *sampleRate, StartPart: part}
	machine := vm.NewMachine(repo, stringTable, host, stdoutLogger{}, config, part)
	host.attachMachine(machine)

	audio, err := newOtoSink(machine.Mixer, *sampleRate)
	if err != nil {
		fmt.Printf("Failed to initialize audio: %v\n", err)
		os.Exit(1)
	}
	defer audio.Close()
	audio.Start()

	go func() {
		const ticInterval = 20 * time.Millisecond
		ticker := time.NewTicker(ticInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := machine.RunTic(host.pollInput()); err != nil {
				fmt.Printf("Machine error: %v\n", err)
				os.Exit(1)
			}
		}
	}()

	if err := host.run(); err != nil {
		fmt.Printf("Video backend error: %v\n", err)
		os.Exit(1)
	}
}

func partNameList() string {
	names := make([]string, 0, len(gamePartNames))
	for n := range gamePartNames {
		names = append(names, n)
	}
	return fmt.Sprint(names)
}
