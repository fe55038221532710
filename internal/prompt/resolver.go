package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/rsrepair/internal/model"
	"github.com/roach88/rsrepair/internal/reconcile"
)

// ErrClosed is returned when operator input ends before a decision.
var ErrClosed = errors.New("operator input closed")

// Projector fetches document id from scan source number source with p
// applied. Projections read the source rather than the observation already
// in memory so they can show fields the scan left out.
type Projector func(ctx context.Context, source int, id model.ID, p model.Projection) (model.Document, error)

// Request is one document awaiting an operator decision.
type Request struct {
	Namespace model.Namespace
	ID        model.ID
	Classes   []reconcile.Class
	Project   Projector
}

// Resolver reads operator commands from in and writes to out.
// It is not safe for concurrent use.
type Resolver struct {
	in    *bufio.Reader
	out   io.Writer
	style styles
	p     *message.Printer
}

// New creates a Resolver.
func New(in io.Reader, out io.Writer) *Resolver {
	return &Resolver{
		in:    bufio.NewReader(in),
		out:   out,
		style: newStyles(out),
		p:     message.NewPrinter(language.English),
	}
}

type state int

const (
	stateMenu state = iota
	stateCommand
	stateConfirm
)

// Resolve asks the operator about req and returns Skip, Delete or Keep of
// a class index. It returns ErrClosed if input ends first.
func (r *Resolver) Resolve(ctx context.Context, req Request) (reconcile.Decision, error) {
	// versions[v-1] is the class index shown as version v.
	var versions []int
	for i, c := range req.Classes {
		if !c.IsMissing() {
			versions = append(versions, i)
		}
	}

	st := stateMenu
	var pending reconcile.Decision
	for {
		if err := ctx.Err(); err != nil {
			return reconcile.Decision{}, err
		}

		switch st {
		case stateMenu:
			r.menu(req, versions)
			st = stateCommand

		case stateCommand:
			line, err := r.readLine()
			if err != nil {
				return reconcile.Decision{}, err
			}
			switch cmd := Parse(line).(type) {
			case Empty:
				st = stateMenu
				continue
			case Skip:
				r.println("")
				return reconcile.Skip(), nil
			case Delete:
				pending = reconcile.Delete()
				st = stateConfirm
				continue
			case ReplaceWith:
				idx, ok := lookup(versions, cmd.Version)
				if !ok {
					r.noVersion(cmd.Text)
					break
				}
				pending = reconcile.Keep(idx)
				st = stateConfirm
				continue
			case ViewVersion:
				idx, ok := lookup(versions, cmd.Version)
				if !ok {
					r.noVersion(cmd.Text)
					break
				}
				r.view(ctx, req, req.Classes[idx], cmd.Projection)
			case Confirm:
				r.invalid(strings.TrimSpace(line))
			case Invalid:
				r.invalid(cmd.Input)
			}
			r.println("")

		case stateConfirm:
			verb := "delete"
			if pending.Action == reconcile.ActionKeep {
				verb = "replace"
			}
			fmt.Fprint(r.out, r.style.render(r.style.warn, "Are you sure?  Enter 'yes' to "+verb+": "))
			line, err := r.readLine()
			if err != nil {
				return reconcile.Decision{}, err
			}
			if _, ok := Parse(line).(Confirm); ok {
				r.println("")
				return pending, nil
			}
			if pending.Action == reconcile.ActionKeep {
				r.println("Not replacing.")
			} else {
				r.println("Not deleting.")
			}
			r.println("")
			st = stateCommand
		}
	}
}

func (r *Resolver) menu(req Request, versions []int) {
	r.println(r.style.render(r.style.header, fmt.Sprintf(
		"Document in '%s' with _id %s is inconsistent across replica set nodes.", req.Namespace, req.ID)))
	v := 0
	for _, c := range req.Classes {
		nodes := r.p.Sprintf("%d nodes", c.Count)
		if c.IsMissing() {
			r.println("  Document is not present on " + nodes)
			continue
		}
		v++
		r.println("  " + r.style.render(r.style.version, fmt.Sprintf("Version %d", v)) + " is present on " + nodes)
	}
	r.println(`Enter a version number to view it, optionally followed by a projection (e.g. '1 {"<field>": 0}').`)
	r.println("Enter 'r' and a version number (e.g. 'r1') to resolve the document to that version on all nodes.")
	r.println("Enter 'delete' to delete the document on all nodes.")
	r.println("Enter 'skip' to leave the document unresolved for now.")
}

func (r *Resolver) view(ctx context.Context, req Request, c reconcile.Class, projection string) {
	if projection == "" {
		r.println(c.Representative.Document().Pretty())
		return
	}
	p, err := model.ParseProjection(projection)
	if err != nil {
		r.println(r.style.render(r.style.err, "Projection is not valid: "+projection))
		r.println("  " + err.Error())
		return
	}
	if req.Project == nil {
		r.println(r.style.render(r.style.err, "Document could not be projected: "+projection))
		return
	}
	doc, err := req.Project(ctx, c.Sources[0], req.ID, p)
	if err != nil {
		r.println(r.style.render(r.style.err, "Document could not be projected: "+projection))
		r.println("  " + err.Error())
		return
	}
	r.println(doc.Pretty())
}

func (r *Resolver) noVersion(text string) {
	r.println(r.style.render(r.style.err, fmt.Sprintf("Document version '%s' does not exist.", text)))
}

func (r *Resolver) invalid(input string) {
	r.println(r.style.render(r.style.err, fmt.Sprintf("'%s' is not valid input", input)))
}

func (r *Resolver) println(s string) {
	fmt.Fprintln(r.out, s)
}

// readLine returns the next line without its terminator. A final line
// without a newline is still returned; only a read at end of input fails.
func (r *Resolver) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrClosed
		}
		return "", fmt.Errorf("read operator input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func lookup(versions []int, v int) (int, bool) {
	if v < 1 || v > len(versions) {
		return 0, false
	}
	return versions[v-1], true
}
