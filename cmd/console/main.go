package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adel-MESRATI/Nexus-AI/internal/console"
	"github.com/Adel-MESRATI/Nexus-AI/internal/infra"
	"github.com/Adel-MESRATI/Nexus-AI/internal/storage"
)

const helpText = `Commands:
  prompt <text>     set the prompt
  negative <text>   set the negative prompt ("negative" alone clears it)
  aspect <ratio>    1:1, 2:3, 3:2 or 16:9
  style <name>      none, cinematic, 3d, anime, cyberpunk, pixel, claymation
  enhance           rewrite the prompt with the language model
  generate          generate an image from the current settings
  history           list generated images, newest first
  download [id]     save one image (the current one by default)
  export            save every image plus a zip archive
  presets           list the server's aspect ratios and styles
  state             print the session as JSON
  dismiss           clear the error message
  quit
`

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConsoleConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).Output(os.Stderr).With().Str("cmd", "console").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := console.NewClient(cfg.APIURL, cfg.APIToken, &http.Client{})
	if err != nil {
		exitWithError(err)
	}
	sink, err := newSink(ctx, cfg)
	if err != nil {
		exitWithError(err)
	}

	out := &syncWriter{w: os.Stdout}
	sess := console.NewSession(client, console.SessionOptions{Logger: &logger})
	exporter := console.NewExporter(sink, nil)
	r := &repl{ctx: ctx, out: out, session: sess, client: client, exporter: exporter}

	if cfg.APIToken == "" {
		out.Printf("NEXUS_API_TOKEN is not set; requests will be rejected. Run devtoken to mint one.\n")
	}
	out.Printf("Nexus AI console. Type \"help\" for commands.\n")
	r.run(os.Stdin)
	r.wg.Wait()
}

func newSink(ctx context.Context, cfg *infra.ConsoleConfig) (storage.Sink, error) {
	if cfg.ExportBucket != "" {
		return storage.NewS3Store(ctx, cfg.AWSRegion, cfg.ExportBucket)
	}
	return storage.NewFileStore(cfg.DownloadDir)
}

type repl struct {
	ctx      context.Context
	out      *syncWriter
	session  *console.Session
	client   *console.Client
	exporter *console.Exporter
	wg       sync.WaitGroup
}

func (r *repl) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		r.out.Printf("> ")
		if !scanner.Scan() {
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		switch strings.ToLower(cmd) {
		case "":
		case "help", "?":
			r.out.Printf("%s", helpText)
		case "prompt":
			r.session.SetPrompt(arg)
		case "negative":
			r.session.SetNegativePrompt(arg)
		case "aspect":
			r.session.SetAspectRatio(arg)
		case "style":
			r.session.SetStyle(arg)
		case "enhance":
			r.background(r.enhance)
		case "generate":
			r.background(r.generate)
		case "history":
			r.out.Printf("%s", console.FormatHistory(r.session.History()))
		case "download":
			r.download(arg)
		case "export":
			r.export()
		case "presets":
			r.presets()
		case "state":
			r.state()
		case "dismiss":
			r.session.DismissError()
		case "quit", "exit":
			return
		default:
			r.out.Printf("unknown command %q\n", cmd)
		}
		if r.ctx.Err() != nil {
			return
		}
	}
}

// background runs a request without blocking the prompt, so a generation
// and an enhancement can be in flight together.
func (r *repl) background(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func (r *repl) generate() {
	img, err := r.session.Generate(r.ctx)
	if err != nil {
		r.reportError(err)
		return
	}
	r.out.Printf("\ngenerated %s (%d bytes base64)\n", img.ID, len(img.ImageData))
}

func (r *repl) enhance() {
	enhanced, err := r.session.Enhance(r.ctx)
	if err != nil {
		r.reportError(err)
		return
	}
	r.out.Printf("\nprompt: %s\n", enhanced)
}

func (r *repl) download(id string) {
	var (
		loc string
		err error
	)
	switch {
	case id != "":
		img, ok := r.session.Image(id)
		if !ok {
			r.out.Printf("no image %q in history\n", id)
			return
		}
		loc, err = r.exporter.Download(r.ctx, img)
	default:
		current := r.session.State().Current
		if current == nil {
			r.out.Printf("nothing generated yet\n")
			return
		}
		loc, err = r.exporter.DownloadCurrent(r.ctx, current.ImageData)
	}
	if err != nil {
		r.out.Printf("download failed: %v\n", err)
		return
	}
	r.out.Printf("saved %s\n", loc)
}

func (r *repl) export() {
	res, err := r.exporter.ExportHistory(r.ctx, r.session.History())
	if err != nil {
		r.out.Printf("export failed: %v\n", err)
		if res != nil && len(res.Images) > 0 {
			r.out.Printf("left behind: %s\n", strings.Join(res.Images, ", "))
		}
		return
	}
	r.out.Printf("saved %d images and %s\n", len(res.Images), res.Archive)
}

func (r *repl) presets() {
	presets, err := r.client.Presets(r.ctx)
	if err != nil {
		r.reportError(err)
		return
	}
	r.out.Printf("%s", console.FormatPresets(presets))
}

func (r *repl) state() {
	st := r.session.State()
	for i := range st.History {
		st.History[i].ImageData = fmt.Sprintf("<%d bytes base64>", len(st.History[i].ImageData))
	}
	if st.Current != nil {
		st.Current.ImageData = fmt.Sprintf("<%d bytes base64>", len(st.Current.ImageData))
	}
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		r.out.Printf("encode state: %v\n", err)
		return
	}
	r.out.Printf("%s\n", raw)
}

func (r *repl) reportError(err error) {
	switch {
	case errors.Is(err, console.ErrBusy):
		r.out.Printf("\nstill working on the previous request\n")
	case console.IsUnauthorized(err):
		r.out.Printf("\nerror: %v (check NEXUS_API_TOKEN)\n", err)
	default:
		r.out.Printf("\nerror: %v\n", err)
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "console:", err)
	os.Exit(1)
}
