package validate

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/pnscred/internal/svc/credsvc"
	"github.com/yusufsyaifudin/pnscred/pkg/i18n"
	"github.com/yusufsyaifudin/pnscred/pnscred"
)

const (
	ExitSuccess = 0
	ExitErr     = -1

	// ExitInvalid is returned when the document parses but is not a valid credential.
	ExitInvalid = 2
)

// Result is printed as a single JSON line. Secret property values are masked.
type Result struct {
	Valid        bool               `json:"valid"`
	Platform     string             `json:"platform"`
	Properties   []pnscred.Property `json:"properties,omitempty"`
	MockEndpoint bool               `json:"mock_endpoint"`
	ETag         string             `json:"etag,omitempty"`
	Property     string             `json:"property,omitempty"`
	Error        string             `json:"error,omitempty"`
}

type Cmd struct {
	flags          *flag.FlagSet
	in             io.Reader
	out            io.Writer
	file           string
	format         string
	platform       string
	locale         string
	allowLocalMock bool
}

func NewCmd() func() (cli.Command, error) {
	return func() (cli.Command, error) {
		cmd := &Cmd{
			in:  os.Stdin,
			out: os.Stdout,
		}
		err := cmd.init()
		return cmd, err
	}
}

var _ cli.Command = (*Cmd)(nil)
var _ cli.CommandFactory = NewCmd()

func (c *Cmd) init() error {
	c.flags = flag.NewFlagSet("validate", flag.ContinueOnError)
	c.flags.StringVar(&c.file, "file", "-",
		"Credential document to validate, - reads stdin")
	c.flags.StringVar(&c.format, "format", string(credsvc.FormatJSON),
		"Document format: json or xml")
	c.flags.StringVar(&c.platform, "platform", pnscred.PlatformGCM,
		"Credential platform")
	c.flags.StringVar(&c.locale, "locale", "en",
		"Locale of validation messages")
	c.flags.BoolVar(&c.allowLocalMock, "allow-local-mock", false,
		"Accept the loopback mock endpoint")
	return nil
}

func (c *Cmd) Help() string {
	return `Usage: pnscred validate [-file cred.json] [-format json|xml] [-platform gcm] [-allow-local-mock] [-locale en|id]

  Validate a credential document offline. Exit code is 0 when valid and 2 when invalid.`
}

func (c *Cmd) Synopsis() string {
	return `Validate a credential document without a server`
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		log.Printf("error parsing argument: %s\n", err)
		return ExitErr
	}

	if !i18n.SetLocale(c.locale) {
		log.Printf("unknown locale %s, using %s\n", c.locale, i18n.Locale())
	}

	doc, err := c.read()
	if err != nil {
		log.Printf("error read credential document: %s\n", err)
		return ExitErr
	}

	res := c.validate(doc)
	if err = json.NewEncoder(c.out).Encode(res); err != nil {
		log.Printf("error write result: %s\n", err)
		return ExitErr
	}

	if !res.Valid {
		return ExitInvalid
	}

	return ExitSuccess
}

func (c *Cmd) read() ([]byte, error) {
	if c.file == "" || c.file == "-" {
		return io.ReadAll(c.in)
	}

	return os.ReadFile(c.file)
}

func (c *Cmd) validate(doc []byte) Result {
	res := Result{
		Platform: c.platform,
	}

	format := credsvc.Format(strings.ToLower(strings.TrimSpace(c.format)))
	cred, err := credsvc.Decode(c.platform, format, doc)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Properties = pnscred.MaskedProperties(cred)
	res.MockEndpoint = credsvc.IsMockEndpoint(cred)

	if err = cred.Validate(c.allowLocalMock); err != nil {
		res.Error = err.Error()

		var contractErr *pnscred.ContractError
		if errors.As(err, &contractErr) {
			res.Property = contractErr.Property
		}

		return res
	}

	res.Valid = true
	res.ETag = credsvc.ETag(cred)
	return res
}
