package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Flakebi/FileSender/internal/filesender/bridge"
	"github.com/Flakebi/FileSender/internal/models"
)

const consoleHelp = `Commands:
  add <file>...   offer files for download
  rm <index>      stop offering the file at index
  ls              list offered files
  note <text>     set the note shown on the page
  quit            exit
`

// Console is the headless front end. Commands typed on in are scheduled on
// the bridge, so they run on the same loop as server notifications.
type Console struct {
	ctrl *Controller
	in   io.Reader
	out  io.Writer
	quit func()
}

func NewConsole(ctrl *Controller, in io.Reader, out io.Writer) *Console {
	return &Console{ctrl: ctrl, in: in, out: out}
}

// Run paints the address, then drains the bridge until ctx ends or quit is typed.
func (c *Console) Run(ctx context.Context, br *bridge.Bridge, urls []string) error {
	c.quit = br.Close
	br.Schedule(func() {
		c.ctrl.Attach(c)
		c.ShowAddress(urls)
	})

	if c.in != nil {
		go c.readCommands(br)
	}

	err := br.Run(ctx, bridge.Direct)
	if err == context.Canceled {
		return nil
	}
	return err
}

func (c *Console) readCommands(br *bridge.Bridge) {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := scanner.Text()
		br.Schedule(func() { c.Exec(line) })
	}
}

// Exec runs one command line. It must be called on the UI loop.
func (c *Console) Exec(line string) {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "":
	case "add":
		c.add(strings.Fields(rest))
	case "rm":
		index, err := strconv.Atoi(rest)
		if err != nil {
			fmt.Fprintf(c.out, "rm: invalid index %q\n", rest)
			return
		}
		if err := c.ctrl.RemoveDownload(index); err != nil {
			fmt.Fprintf(c.out, "rm: %v\n", err)
		}
	case "ls":
		c.ShowDownloads(c.ctrl.Downloads())
	case "note":
		c.ctrl.SetOfferedNote(rest)
		fmt.Fprintln(c.out, "Note updated")
	case "help":
		fmt.Fprint(c.out, consoleHelp)
	case "quit", "exit":
		if c.quit != nil {
			c.quit()
		}
	default:
		fmt.Fprintf(c.out, "Unknown command %q\n%s", cmd, consoleHelp)
	}
}

func (c *Console) add(args []string) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := offerablePath(arg)
		if err != nil {
			fmt.Fprintf(c.out, "add: %v\n", err)
			continue
		}
		paths = append(paths, abs)
	}
	c.ctrl.AddDownloads(paths...)
}

func (c *Console) ShowAddress(urls []string) {
	for _, u := range urls {
		fmt.Fprintf(c.out, "Visit %s to exchange files\n", u)
	}
}

func (c *Console) ShowReceivedNote(text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(c.out, "Received note:\n%s\n", text)
}

func (c *Console) ShowLastUpload(outcome models.UploadOutcome) {
	fmt.Fprintf(c.out, "Last upload: %s\n", outcome)
}

func (c *Console) ShowDownloads(entries []models.DownloadEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No files offered")
		return
	}
	fmt.Fprintln(c.out, "Offered files:")
	for _, e := range entries {
		fmt.Fprintf(c.out, "\t[%d] %s\n", e.Index, e.Name)
	}
}
