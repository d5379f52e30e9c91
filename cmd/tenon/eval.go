package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/tenon/pkg/document"
	"github.com/chazu/tenon/pkg/engine"
	"github.com/chazu/tenon/pkg/validate"
)

var (
	evalOutput string
	evalFormat string
	evalWatch  bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <script>",
	Short: "Evaluate a model script and optionally export the result",
	Long: `Evaluate a Lisp model script into a document of solid parts. With
--output the parts are tessellated and written in the chosen format;
otherwise a part summary is printed. With --watch the script is
re-evaluated every time the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()
		path := args[0]

		if evalWatch {
			return watchAndEval(eng, path)
		}
		return evalOnce(eng, path)
	},
}

func init() {
	evalCmd.Flags().StringVarP(&evalOutput, "output", "o", "", "write the exported model to this file")
	evalCmd.Flags().StringVarP(&evalFormat, "format", "f", "", "export format (defaults to the output extension, then the config)")
	evalCmd.Flags().BoolVarP(&evalWatch, "watch", "w", false, "re-evaluate when the script changes")
	rootCmd.AddCommand(evalCmd)
}

func evalOnce(eng *engine.Engine, path string) error {
	doc, err := evaluateScript(eng, path)
	if err != nil {
		return err
	}

	blocking := 0
	for _, issue := range validate.Document(doc) {
		if issue.Severity == validate.SeverityError {
			fmt.Fprintln(os.Stderr, issue.Error())
			blocking++
		} else {
			logger.Warn("validation", zap.String("issue", issue.Error()))
		}
	}
	if blocking > 0 {
		return fmt.Errorf("%d validation errors", blocking)
	}

	if evalOutput == "" {
		printSummary(doc)
		return nil
	}
	return exportDocument(doc, evalOutput)
}

// watchAndEval re-runs the evaluation whenever the script changes on
// disk. The parent directory is watched rather than the file itself so
// editors that replace the file via rename keep triggering events.
func watchAndEval(eng *engine.Engine, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	runEval := func() {
		if err := evalOnce(eng, path); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	runEval()
	logger.Info("watching for changes", zap.String("script", path))

	// Editors fire several events per save; collapse them with a
	// short debounce.
	const debounce = 100 * time.Millisecond
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	target := filepath.Clean(path)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			runEval()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// evaluateScript reads and evaluates a script file, printing eval
// errors to stderr.
func evaluateScript(eng *engine.Engine, path string) (*document.Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	doc, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, e.Error())
		}
		return nil, fmt.Errorf("%d eval errors", len(evalErrs))
	}
	return doc, nil
}

func exportDocument(doc *document.Document, path string) error {
	format := evalFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	if format == "" {
		format = cfg.Export.DefaultFormat
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := doc.Export(format, f); err != nil {
		return err
	}
	logger.Info("exported model",
		zap.String("file", path),
		zap.String("format", format),
		zap.Int("parts", len(doc.Parts())))
	return nil
}

func printSummary(doc *document.Document) {
	parts := doc.Parts()
	fmt.Printf("%d parts\n", len(parts))
	for _, p := range parts {
		min, max, err := p.BoundingBox()
		if err != nil {
			fmt.Printf("  %-20s (bounds unavailable: %v)\n", p.Name, err)
			continue
		}
		fmt.Printf("  %-20s %.1f x %.1f x %.1f\n",
			p.Name, max[0]-min[0], max[1]-min[1], max[2]-min[2])
	}
}
