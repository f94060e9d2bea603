package commands

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrusso91/aiofile/internal/bytesize"
	"github.com/mrusso91/aiofile/internal/cli/output"
	"github.com/mrusso91/aiofile/internal/logger"
	"github.com/mrusso91/aiofile/pkg/aio"
	"github.com/mrusso91/aiofile/pkg/aio/osfs"
	"github.com/mrusso91/aiofile/pkg/config"
	"github.com/mrusso91/aiofile/pkg/metrics"
)

var (
	copyBufferSize string
	copyWindow     int
	copyWorkers    int
)

var copyCmd = &cobra.Command{
	Use:   "copy <source> <destination>",
	Short: "Copy a file through the asynchronous I/O runtime",
	Long: `Copy streams the source file to the destination using a window of
in-flight asynchronous requests. Reads are submitted against the source's
tracked sequential position; each completed read triggers a positional write
to the destination at the same offset, so chunks may complete out of order
without corrupting the result.

Examples:
  # Copy with defaults
  aiofile copy big.img backup.img

  # Wider window, bigger chunks
  aiofile copy --window 16 --buffer-size 8Mi big.img backup.img`,
	Args: cobra.ExactArgs(2),
	RunE: runCopy,
}

func init() {
	copyCmd.Flags().StringVar(&copyBufferSize, "buffer-size", "", "per-request buffer size (e.g. 4Mi)")
	copyCmd.Flags().IntVar(&copyWindow, "window", 0, "in-flight requests per handle")
	copyCmd.Flags().IntVar(&copyWorkers, "workers", 0, "I/O worker count")
}

func runCopy(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := applyCopyFlags(cfg); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Listen, metrics.Handler()); err != nil {
				logger.Error("Metrics listener failed", "error", err)
			}
		}()
		logger.Info("Metrics listener started", "listen", cfg.Metrics.Listen)
	}

	src, err := os.Open(args[0])
	if err != nil {
		return err
	}
	info, err := src.Stat()
	if err != nil {
		_ = src.Close()
		return err
	}

	dst, err := os.Create(args[1])
	if err != nil {
		_ = src.Close()
		return err
	}

	sys := osfs.New(osfs.Config{
		Workers:   cfg.IO.Workers,
		QueueSize: cfg.IO.QueueDepth,
	})
	sys.Start()
	defer sys.Stop(30 * time.Second)

	loop := aio.NewLoop(sys, aio.LoopConfig{
		QueueDepth: cfg.IO.QueueDepth,
		Metrics:    metrics.NewIOMetrics(),
	})

	c := newCopier(loop, info.Size(), cfg.IO.BufferSize.Int64(), cfg.IO.Window)

	start := time.Now()
	if err := c.run(src, dst); err != nil {
		// Bind failed before the handles took ownership of the files.
		_ = src.Close()
		_ = dst.Close()
		return err
	}
	elapsed := time.Since(start)

	if c.err != nil {
		logger.Error("Copy aborted", "written", c.written, "of", c.size, "error", c.err)
		return c.err
	}

	printCopySummary(cmd, c, cfg, elapsed)
	return nil
}

func applyCopyFlags(cfg *config.Config) error {
	if copyBufferSize != "" {
		size, err := bytesize.Parse(copyBufferSize)
		if err != nil {
			return err
		}
		cfg.IO.BufferSize = size
	}
	if copyWindow > 0 {
		cfg.IO.Window = copyWindow
	}
	if copyWorkers > 0 {
		cfg.IO.Workers = copyWorkers
	}
	return config.Validate(cfg)
}

// copier drives size bytes from a source handle to a destination handle with
// a window of request pipelines. Each pipeline owns one buffer and one
// read/write request pair; slot i's read completion submits slot i's write,
// and the write completion starts the next read. Everything runs on the loop
// goroutine.
type copier struct {
	loop   *aio.Loop
	srcH   aio.Handle
	dstH   aio.Handle
	size   int64
	bufLen int64
	window int

	reads  []aio.Request
	writes []aio.Request
	bufs   [][]byte

	issued   int64 // read bytes handed to the backend
	written  int64 // write bytes confirmed by completions
	chunks   int
	inFlight int
	closed   bool
	err      error
}

func newCopier(loop *aio.Loop, size, bufLen int64, window int) *copier {
	c := &copier{
		loop:   loop,
		size:   size,
		bufLen: bufLen,
		window: window,
		reads:  make([]aio.Request, window),
		writes: make([]aio.Request, window),
		bufs:   make([][]byte, window),
	}
	for i := range c.bufs {
		c.bufs[i] = make([]byte, bufLen)
	}
	return c
}

func (c *copier) run(src, dst aio.File) error {
	if err := c.loop.Bind(&c.srcH, src); err != nil {
		return err
	}
	if err := c.loop.Bind(&c.dstH, dst); err != nil {
		// Let the source handle drain through its own close protocol.
		c.srcH.Close(nil)
		c.loop.Run()
		return err
	}

	for i := 0; i < c.window; i++ {
		if c.startRead(i) {
			c.inFlight++
		}
	}
	if c.inFlight == 0 {
		c.close()
	}

	c.loop.Run()
	return nil
}

// startRead submits the next sequential chunk into slot i. Returns false
// when the source is exhausted or the copy has failed.
func (c *copier) startRead(i int) bool {
	if c.err != nil {
		return false
	}
	remaining := c.size - c.issued
	if remaining <= 0 {
		return false
	}

	n := c.bufLen
	if remaining < n {
		n = remaining
	}
	buf := c.bufs[i][:n]

	err := c.srcH.Read(&c.reads[i], [][]byte{buf}, func(req *aio.Request, n int, b []byte, err error) {
		c.onRead(i, req, n, b, err)
	})
	if err != nil {
		c.fail(err)
		return false
	}
	c.issued += n
	return true
}

func (c *copier) onRead(i int, req *aio.Request, n int, buf []byte, err error) {
	if err != nil {
		c.finishSlot(fmt.Errorf("read at %d: %w", req.Offset(), err))
		return
	}
	if n <= 0 {
		c.finishSlot(fmt.Errorf("read at %d: unexpected end of file", req.Offset()))
		return
	}

	werr := c.dstH.SubmitWrite(&c.writes[i], req.Offset(), aio.FromStart, [][]byte{buf[:n]},
		func(_ *aio.Request, err error) {
			c.onWrite(i, n, err)
		})
	if werr != nil {
		c.finishSlot(werr)
	}
}

func (c *copier) onWrite(i, n int, err error) {
	if err != nil {
		c.finishSlot(fmt.Errorf("write: %w", err))
		return
	}
	c.written += int64(n)
	c.chunks++

	if !c.startRead(i) {
		c.finishSlot(nil)
	}
}

// fail records the copy's first error. It retires nothing: startRead callers
// account for the slot themselves, since during seeding the slot was never
// counted in flight.
func (c *copier) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// finishSlot retires one pipeline, recording err if it is the first failure,
// and closes the handles once every pipeline has retired.
func (c *copier) finishSlot(err error) {
	if err != nil {
		c.fail(err)
	}
	c.inFlight--
	if c.inFlight == 0 {
		c.close()
	}
}

func (c *copier) close() {
	if c.closed {
		return
	}
	c.closed = true
	c.srcH.Close(nil)
	c.dstH.Close(nil)
}

func printCopySummary(cmd *cobra.Command, c *copier, cfg *config.Config, elapsed time.Duration) {
	throughput := "n/a"
	if seconds := elapsed.Seconds(); seconds > 0 {
		throughput = fmt.Sprintf("%.1f MiB/s", float64(c.written)/(1024*1024)/seconds)
	}

	tbl := output.NewTable("Metric", "Value")
	tbl.AddRow("bytes copied", fmt.Sprintf("%d", c.written))
	tbl.AddRow("chunks", fmt.Sprintf("%d", c.chunks))
	tbl.AddRow("chunk size", cfg.IO.BufferSize.String())
	tbl.AddRow("window", fmt.Sprintf("%d", cfg.IO.Window))
	tbl.AddRow("workers", fmt.Sprintf("%d", cfg.IO.Workers))
	tbl.AddRow("duration", elapsed.Round(time.Millisecond).String())
	tbl.AddRow("throughput", throughput)
	tbl.Render(cmd.OutOrStdout())
}
