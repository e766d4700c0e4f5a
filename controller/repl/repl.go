// Package repl implements the interactive console of the converter.
//
// The REPL owns the table it answers from. update, load and reload
// replace it only on success, so a failed command never loses the rates
// that were already loaded.
package repl

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kylycht/currconv/model"
	"github.com/kylycht/currconv/service"
	"github.com/rs/zerolog/log"
)

// ErrQuit is returned by Execute for the exit commands.
var ErrQuit = errors.New("quit")

// errReported marks a command failure already printed to the user.
var errReported = errors.New("command failed")

const (
	prompt   = "\n>>> "
	dateHint = "dd.MM.yyyy"
	places   = 4
)

type REPL struct {
	in    io.Reader
	out   *printer
	rates service.Rates    // update/load backend
	table *model.Table     // rates the queries are answered from
	now   func() time.Time // clock for the default update date
}

// New creates a REPL bound to stdin and stdout.
func New(rates service.Rates, noColor bool) *REPL {
	return newREPL(rates, os.Stdin, newConsolePrinter(os.Stdout, noColor))
}

// NewWithIO creates a REPL with custom I/O and no colors, mostly for tests.
func NewWithIO(rates service.Rates, in io.Reader, out io.Writer) *REPL {
	return newREPL(rates, in, &printer{w: out})
}

func newREPL(rates service.Rates, in io.Reader, out *printer) *REPL {
	return &REPL{
		in:    in,
		out:   out,
		rates: rates,
		table: model.NewTable(time.Now()),
		now:   time.Now,
	}
}

// Table returns the table the REPL currently answers from.
func (r *REPL) Table() *model.Table {
	return r.table
}

// Run prints the header, reloads today's rates and serves commands
// until an exit command, EOF or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	r.out.paint(magenta, header)
	r.out.print("\n")

	if err := r.reload(ctx, time.Time{}); err != nil {
		log.Debug().Err(err).Msg("starting with bootstrap rates")
	}

	scanner := bufio.NewScanner(r.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.out.print(prompt)
		if !scanner.Scan() {
			r.out.print("\n")
			return scanner.Err()
		}

		if err := r.Execute(ctx, scanner.Text()); errors.Is(err, ErrQuit) {
			return nil
		}
	}
}

// Load replaces the table with the persisted snapshot.
func (r *REPL) Load(ctx context.Context) error {
	table, report, err := r.rates.Load(ctx)
	if err != nil {
		r.reportError(err)
		return errReported
	}

	r.table = table
	r.out.printf("\nLoaded: %d. | Skipped: %d. | Actual date: %s.\n",
		report.Loaded, report.Skipped, table.Date().Format(model.DateFormat))

	return nil
}

// Execute runs a single command line and prints its outcome.
// It returns ErrQuit for exit commands and a non-nil error when
// the command failed; failures are already printed.
func (r *REPL) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)

	switch len(fields) {
	case 1:
		cmd := strings.ToLower(fields[0])
		switch cmd {
		case "exit", "q", "quit":
			return ErrQuit
		case "h", "help":
			r.help()
			return nil
		case "l", "list":
			r.list()
			return nil
		case "update":
			return r.update(ctx, time.Time{})
		case "load":
			return r.Load(ctx)
		case "reload":
			return r.reload(ctx, time.Time{})
		}

	case 2:
		cmd := strings.ToLower(fields[0])
		if cmd != "update" && cmd != "reload" {
			break
		}

		date, err := model.ParseDate(fields[1])
		if err != nil {
			r.out.errorPrefix()
			r.out.middle(`"`, fields[0], yellow, `" command was detected but the second argument `)
			r.out.middleLine(`"`, fields[1], yellow, `" can't be parsed as a date.`)
			r.out.middleLine("Please, provide the date in accordance with the following format: ", dateHint, blue, ".")
			return errReported
		}

		if cmd == "update" {
			return r.update(ctx, date)
		}
		return r.reload(ctx, date)

	case 3, 4:
		if isArrow(fields[len(fields)-2]) {
			return r.query(fields)
		}
	}

	r.unknown(fields)
	return errReported
}

func isArrow(word string) bool {
	switch strings.ToLower(word) {
	case "to", "->", "=>":
		return true
	}
	return false
}

func (r *REPL) update(ctx context.Context, date time.Time) error {
	if date.IsZero() {
		date = r.now()
	}

	if err := r.rates.Update(ctx, date); err != nil {
		r.reportError(err)
		return errReported
	}

	r.out.middleLine("\nRates file updated for ", date.Format(model.DateFormat), blue, ".")
	return nil
}

func (r *REPL) reload(ctx context.Context, date time.Time) error {
	if err := r.update(ctx, date); err != nil {
		return err
	}
	return r.Load(ctx)
}

// query handles "AMOUNT FROM to TO" and "FROM to TO".
func (r *REPL) query(fields []string) error {
	name, rawAmount, arrow := "rate calculating", "1", fields[1]
	from, to := fields[0], fields[2]
	fromOrd, toOrd := "first", "third"
	if len(fields) == 4 {
		name, rawAmount, arrow = "converting", fields[0], fields[2]
		from, to = fields[1], fields[3]
		fromOrd, toOrd = "second", "fourth"
	}

	amount, err := model.ParseDecimal(rawAmount)
	if err != nil {
		r.out.errorPrefix()
		r.out.middle(name+` command "`, arrow, yellow, `" was detected but the first argument `)
		r.out.middleLine(`"`, rawAmount, yellow, `" can't be parsed as a number.`)
		r.out.print("Please, provide the number in the correct format.\n")
		return errReported
	}

	for _, arg := range []struct{ code, ord string }{{from, fromOrd}, {to, toOrd}} {
		if model.IsValidCode(strings.ToUpper(arg.code)) {
			continue
		}
		r.out.errorPrefix()
		r.out.middle(name+` command "`, arrow, yellow, `" was detected but the `+arg.ord+` argument `)
		r.out.middleLine(`"`, arg.code, yellow, `" can't be parsed as a currency char code.`)
		r.out.middleLine("Please, provide the currency char code in the form of ", "3 Latin letters", blue, " in any case.")
		return errReported
	}

	from, to = strings.ToUpper(from), strings.ToUpper(to)

	result, err := r.table.Convert(amount, from, to)
	if err != nil {
		r.reportError(err)
		return errReported
	}

	r.out.middleLine("\n"+amount.String()+" "+from+" = ", result.StringFixed(places), magenta, " "+to+".")
	return nil
}

func (r *REPL) help() {
	r.out.middleLine("\n", "Available commands (in any case):", yellow, "")
	r.out.print("\n" + helpText)
}

func (r *REPL) list() {
	r.out.middleLine("\n", "Available currencies:", magenta, "")

	currencies := r.table.Currencies()
	for _, c := range currencies {
		r.out.print(c.Describe() + "\n")
	}

	r.out.middle("Total: ", strconv.Itoa(len(currencies)), blue, ". | ")
	r.out.middleLine("Actual date: ", r.table.Date().Format(model.DateFormat), blue, ".")
}

func (r *REPL) unknown(fields []string) {
	r.out.errorPrefix()
	if len(fields) == 0 {
		r.out.print("no command was received")
	} else {
		r.out.middle(`unknown command: "`, strings.Join(fields, " "), yellow, `"`)
	}
	r.out.print(".\n")
	r.out.paint(yellow, hint)
	r.out.print("\n")
}

func (r *REPL) reportError(err error) {
	log.Debug().Err(err).Msg("command failed")

	r.out.errorPrefix()
	r.out.print(err.Error() + ".\n")
}
