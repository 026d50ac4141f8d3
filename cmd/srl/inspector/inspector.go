package inspector

// The inspector reads one or more concatenated Sereal documents from a file
// and logs what it finds. With --stream it decodes incrementally through the
// buffer engine's refill path and compacts consumed bytes between documents,
// so arbitrarily long document streams run in bounded memory.

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-sereal/buffer"
	"github.com/rony4d/go-sereal/flags"
	"github.com/rony4d/go-sereal/sereal"
)

var app = flags.NewApp()

func init() {
	app.Flags = flags.CommonFlags()
	app.Action = inspect
}

// Run executes the inspector with the given command line.
func Run(args []string) error {
	return app.Run(args)
}

func inspect(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}
	path := ctx.String("input")
	if path == "" {
		return errors.New("no --input file given")
	}
	if ctx.Bool("stream") {
		return inspectStream(path, ctx.Int("compact-every"))
	}
	return inspectBounded(path)
}

// inspectBounded loads the whole file and decodes it in place.
func inspectBounded(path string) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"file": path,
		"size": len(raw),
	}).Debug("loaded document")

	r := sereal.NewReader(raw)
	defer r.Buffer().Destroy()

	for n := 1; !r.Exhausted(); n++ {
		if err := readDocument(r, n); err != nil {
			return err
		}
	}
	return nil
}

// inspectStream decodes directly from the file descriptor, pulling bytes as
// the bounds guard demands them.
func inspectStream(path string, compactEvery int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := sereal.NewStreamingReader(f)
	// Pin the file for the duration of the decode.
	r.Buffer().SetAnchor(f)
	defer r.Buffer().Destroy()

	for n := 1; ; n++ {
		if err := r.ReadHeader(); err != nil {
			// A clean end of stream is a header that never starts. Once a
			// header has been consumed, any shortfall is a truncated
			// document, not a drain.
			if errors.Is(err, buffer.ErrOutOfRange) && r.Exhausted() {
				logrus.WithField("documents", n-1).Info("stream drained")
				return nil
			}
			return err
		}
		if err := readBody(r, n); err != nil {
			return err
		}
		if compactEvery > 0 && n%compactEvery == 0 {
			if err := r.Compact(); err != nil {
				return err
			}
			logrus.WithField("buffered", r.Buffer().Size()).Debug("compacted decode buffer")
		}
	}
}

// readDocument consumes one header+body and logs the decoded value.
func readDocument(r *sereal.Reader, n int) error {
	if err := r.ReadHeader(); err != nil {
		return err
	}
	return readBody(r, n)
}

// readBody consumes and logs the body of a document whose header has been
// read.
func readBody(r *sereal.Reader, n int) error {
	v, err := r.ReadValue()
	if err != nil {
		return errors.Wrapf(err, "document %d", n)
	}
	logrus.WithFields(logrus.Fields{
		"doc":     n,
		"version": r.Version(),
		"value":   render(v),
	}).Info("decoded document")
	return nil
}

// render formats a decoded value for logging; byte strings come out as hex.
func render(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "undef"
	case []byte:
		return hexutil.Encode(v)
	case []interface{}:
		return fmt.Sprintf("array[%d]", len(v))
	case map[string]interface{}:
		return fmt.Sprintf("hash[%d]", len(v))
	default:
		return fmt.Sprint(v)
	}
}
