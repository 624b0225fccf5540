package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/polzovatel/browser-state/internal/browser"
	"github.com/polzovatel/browser-state/internal/overlay"
	"github.com/polzovatel/browser-state/internal/state"
)

type cliOptions struct {
	url           string
	storage       string
	contentLength int
	maxLinks      int
	noContent     bool
	noStructure   bool
	testIDAttr    string
}

func main() {
	_ = godotenv.Load()
	opts := parseFlags()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	launcher, err := browser.NewLauncher()
	if err != nil {
		log.Fatal().Err(err).Msg("browser init")
	}
	defer launcher.Close()

	registry, err := launcher.NewRegistry(opts.storage)
	if err != nil {
		log.Fatal().Err(err).Msg("browser context")
	}
	defer registry.Close()

	scanOpts := state.Options{
		MaxContentLength: opts.contentLength,
		IncludeContent:   !opts.noContent,
		IncludeStructure: !opts.noStructure,
		MaxLinks:         opts.maxLinks,
		TestIDAttr:       opts.testIDAttr,
	}
	synth := state.NewSynthesizer(registry, scanOpts, log.With().Str("comp", "state").Logger())

	if opts.url != "" {
		if err := openPage(ctx, registry, synth, opts.url); err != nil {
			log.Fatal().Err(err).Msg("open initial page")
		}
	}

	runREPL(ctx, registry, synth)
}

func parseFlags() cliOptions {
	opts := cliOptions{}
	flag.StringVar(&opts.url, "url", "", "initial url to open")
	flag.StringVar(&opts.storage, "storage", "", "path to storage state json")
	flag.IntVar(&opts.contentLength, "content-length", 4000, "max content chars per page, 0 = unlimited")
	flag.IntVar(&opts.maxLinks, "max-links", 25, "max link lines rendered per page")
	flag.BoolVar(&opts.noContent, "no-content", false, "omit the CONTENT section")
	flag.BoolVar(&opts.noStructure, "no-structure", false, "omit the STRUCTURE section")
	flag.StringVar(&opts.testIDAttr, "testid-attr", "data-testid", "marker attribute for selectors and the data attribute index")
	flag.Parse()
	return opts
}

func openPage(ctx context.Context, registry *browser.Registry, synth *state.Synthesizer, url string) error {
	id, err := registry.OpenPage(ctx, url)
	if err != nil {
		return err
	}
	_ = registry.WaitForStableDOM(ctx, id, 5*time.Second)
	dismissed := dismissOverlays(registry, id)
	if dismissed > 0 {
		log.Info().Str("page", id).Int("dismissed", dismissed).Msg("overlays dismissed")
	}
	if _, err := synth.Refresh(ctx); err != nil {
		return err
	}
	fmt.Printf("opened %s as %s\n", url, id)
	return nil
}

func dismissOverlays(registry *browser.Registry, id string) int {
	page, ok := registry.GetPage(id)
	if !ok {
		return 0
	}
	d := overlay.NewDismisser(page, log.With().Str("comp", "overlay").Str("page", id).Logger())
	return d.Dismiss()
}

func runREPL(ctx context.Context, registry *browser.Registry, synth *state.Synthesizer) {
	fmt.Println("commands: open <url> | goto <page> <url> | pages | state | refresh | dismiss <page> | click <page> <selector> | fill <page> <selector> <text> | read <page> [selector] | close <page> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := splitFields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return

		case "open":
			if len(args) < 1 {
				fmt.Println("usage: open <url>")
				continue
			}
			if err := openPage(ctx, registry, synth, args[0]); err != nil {
				fmt.Printf("error: %v\n", err)
			}

		case "pages":
			for _, info := range registry.ListPages() {
				fmt.Printf("%s  %s\n", info.ID, info.URL)
			}

		case "state":
			fmt.Println(synth.CachedState())

		case "refresh":
			text, err := synth.Refresh(ctx)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(text)

		case "goto":
			if len(args) < 2 {
				fmt.Println("usage: goto <page> <url>")
				continue
			}
			if err := registry.Navigate(ctx, args[0], args[1]); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			_ = registry.WaitForStableDOM(ctx, args[0], 5*time.Second)
			dismissed := dismissOverlays(registry, args[0])
			if dismissed > 0 {
				log.Info().Str("page", args[0]).Int("dismissed", dismissed).Msg("overlays dismissed")
			}
			if _, err := synth.Refresh(ctx); err != nil {
				fmt.Printf("error: %v\n", err)
			}

		case "dismiss":
			if len(args) < 1 {
				fmt.Println("usage: dismiss <page>")
				continue
			}
			fmt.Printf("dismissed %d overlay elements\n", dismissOverlays(registry, args[0]))

		case "click":
			if len(args) < 2 {
				fmt.Println("usage: click <page> <selector>")
				continue
			}
			selector := strings.Join(args[1:], " ")
			if err := registry.Click(ctx, args[0], selector); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("clicked %s\n", selector)

		case "fill":
			if len(args) < 3 {
				fmt.Println(`usage: fill <page> "<selector>" <text>`)
				continue
			}
			if err := registry.Fill(ctx, args[0], args[1], strings.Join(args[2:], " ")); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("filled %s\n", args[1])

		case "read":
			if len(args) < 1 {
				fmt.Println("usage: read <page> [selector]")
				continue
			}
			selector := ""
			if len(args) > 1 {
				selector = strings.Join(args[1:], " ")
			}
			text, err := registry.Read(ctx, args[0], selector)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(text)

		case "close":
			if len(args) < 1 {
				fmt.Println("usage: close <page>")
				continue
			}
			if err := registry.ClosePage(args[0]); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("closed %s\n", args[0])

		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

// splitFields splits a command line on whitespace. A field that starts with
// a double quote runs to the closing quote, so selectors with spaces (the
// ">> nth=N" qualifier, quoted attribute values) arrive as one argument;
// inside such a field \" and \\ escape a literal quote and backslash. Quotes
// elsewhere in a field are kept as-is, and an unclosed quote extends to the
// end of the line.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	escaped := false
	hasField := false

	flush := func() {
		if hasField {
			fields = append(fields, cur.String())
			cur.Reset()
			hasField = false
		}
	}

	for _, r := range line {
		switch {
		case escaped:
			if r != '"' && r != '\\' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
			hasField = true
		case inQuote && r == '"':
			inQuote = false
		case !inQuote && r == '"' && !hasField:
			inQuote = true
			hasField = true
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
			hasField = true
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	flush()
	return fields
}
