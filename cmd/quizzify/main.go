package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"quizzify"

	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

func main() {
	var (
		topic      = flag.String("topic", "", "Quiz topic")
		static     = flag.Bool("static", false, "Use the built-in Python quiz instead of generating one")
		playMode   = flag.Bool("play", false, "Play the quiz interactively")
		outputFile = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		provider   = flag.String("provider", "", "Model provider: openai, gemini or ollama (or set QUIZZIFY_PROVIDER)")
		model      = flag.String("model", "", "Model name for the selected provider")
		apiKey     = flag.String("api-key", "", "API key for the selected provider")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
		history    = flag.Int("history", 0, "Show the last N generation attempts and exit")
	)

	flag.Parse()

	cfg := quizzify.LoadConfig()
	applyFlags(cfg, *provider, *model, *apiKey)

	if *verbose {
		cfg.LogLevel = "debug"
	}
	log = quizzify.NewLogger(cfg.LogLevel, cfg.LogFormat)
	quizzify.SetLogger(log)
	quizzify.SetVerbose(*verbose)

	if *history > 0 {
		if err := showHistory(os.Stdout, cfg.HistoryDB, *history); err != nil {
			log.Fatal().Err(err).Msg("failed to read history")
		}
		return
	}

	questions, err := obtainQuiz(cfg, *topic, *static)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get quiz")
	}

	if *playMode {
		session := quizzify.NewSession()
		if err := session.Load(questions); err != nil {
			log.Fatal().Err(err).Msg("failed to load quiz")
		}
		if err := play(os.Stdin, os.Stdout, session); err != nil {
			log.Fatal().Err(err).Msg("quiz aborted")
		}
		return
	}

	output, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal quiz")
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatal().Err(err).Msg("failed to write output file")
		}
		log.Info().Str("file", *outputFile).Msg("quiz saved")
		return
	}
	fmt.Println(string(output))
}

// applyFlags lets command line flags override the environment for the
// selected provider.
func applyFlags(cfg *quizzify.Config, provider, model, apiKey string) {
	if provider != "" {
		cfg.Provider = provider
	}
	switch cfg.Provider {
	case "openai":
		if model != "" {
			cfg.OpenAIModel = model
		}
		if apiKey != "" {
			cfg.OpenAIKey = apiKey
		}
	case "gemini":
		if model != "" {
			cfg.GeminiModel = model
		}
		if apiKey != "" {
			cfg.GeminiKey = apiKey
		}
	case "ollama":
		if model != "" {
			cfg.OllamaModel = model
		}
	}
}

func obtainQuiz(cfg *quizzify.Config, topic string, static bool) (quizzify.QuestionSet, error) {
	if static {
		return quizzify.StaticProvider{}.Get(), nil
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("topic is required, use -topic or -static")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GenerateTimeout)
	defer cancel()

	completer, err := quizzify.NewCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer quizzify.CloseCompleter(completer)

	generator := quizzify.NewQuizGenerator(completer, cfg.Provider)
	generator.SetTranscriptDir(cfg.TranscriptDir)

	if cfg.HistoryDB != "" {
		h, err := quizzify.OpenHistory(cfg.HistoryDB)
		if err != nil {
			log.Warn().Err(err).Msg("generation history disabled")
		} else {
			defer h.Close()
			generator.SetRecorder(h)
		}
	}

	fmt.Fprintf(os.Stderr, "Generating a quiz on %q...\n", strings.TrimSpace(topic))
	return generator.Generate(ctx, topic)
}

func showHistory(out io.Writer, path string, limit int) error {
	if path == "" {
		return errors.New("generation history is disabled, set QUIZZIFY_HISTORY_DB")
	}
	h, err := quizzify.OpenHistory(path)
	if err != nil {
		return err
	}
	defer h.Close()

	records, err := h.RecentGenerations(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No generations recorded yet.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%s  %-8s %-16s %6.1fs  %s\n",
			rec.CreatedAt.Local().Format(time.DateTime), rec.Provider, rec.Outcome, rec.Duration.Seconds(), rec.Topic)
		if rec.Error != "" {
			fmt.Fprintf(out, "    %s\n", rec.Error)
		}
	}
	return nil
}

var letters = []string{"A", "B", "C", "D"}

// play runs a loaded session on a terminal: one prompt per question, then
// the score and an optional review.
func play(in io.Reader, out io.Writer, session *quizzify.Session) error {
	scanner := bufio.NewScanner(in)
	questions := session.Questions()

	for i, q := range questions {
		fmt.Fprintf(out, "Question %d/%d:\n%s\n\n", i+1, len(questions), q.Text)
		for j, option := range q.Options {
			fmt.Fprintf(out, "%s) %s\n", letters[j], option)
		}
		fmt.Fprintln(out)

		for {
			fmt.Fprint(out, "Your answer (A/B/C/D): ")
			if !scanner.Scan() {
				return inputError(scanner)
			}
			idx := strings.Index("ABCD", strings.ToUpper(strings.TrimSpace(scanner.Text())))
			if idx < 0 || len(strings.TrimSpace(scanner.Text())) != 1 {
				fmt.Fprintln(out, "Please enter A, B, C, or D")
				continue
			}
			if err := session.RecordAnswer(i, q.Options[idx]); err != nil {
				return err
			}
			break
		}
		fmt.Fprintln(out)
	}

	result, err := session.Submit()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "You scored %d/%d. %s\n\n", result.CorrectCount, quizzify.QuestionCount, verdict(result.CorrectCount))

	fmt.Fprint(out, "Show the correct answers? (y/N): ")
	if !scanner.Scan() {
		fmt.Fprintln(out)
		return scanner.Err()
	}
	if !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
		return nil
	}

	review, err := session.Review()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for i, item := range review {
		mark := "x"
		if result.PerQuestionCorrect[i] {
			mark = "ok"
		}
		fmt.Fprintf(out, "%d. [%s] %s\n   Answer: %s\n", i+1, mark, item.Question, item.CorrectAnswer)
	}
	return nil
}

func inputError(scanner *bufio.Scanner) error {
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}

func verdict(correct int) string {
	if correct >= 4 {
		return "Outstanding!"
	}
	return "Good effort, keep practising."
}
