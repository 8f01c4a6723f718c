package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/twinmark/internal/coordinator"
	"github.com/dshills/twinmark/internal/logging"
)

// Engine owns one sandboxed Lua state bound to a document.
//
// An LState is not goroutine-safe; Run serializes callers.
type Engine struct {
	doc     *coordinator.Coordinator
	log     *logging.Logger
	out     io.Writer
	limit   int64
	timeout time.Duration

	mu       sync.Mutex
	L        *lua.LState
	count    int64
	exceeded bool
	closed   bool
}

// New creates an Engine for doc.
func New(doc *coordinator.Coordinator, opts ...Option) *Engine {
	e := &Engine{
		doc:     doc,
		log:     logging.Nop(),
		out:     io.Discard,
		limit:   DefaultInstructionLimit,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("script")

	e.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(e.L)
	e.sandbox()
	e.registerDoc()
	return e
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes the base functions that reach outside the state and
// routes print to the engine's output.
func (e *Engine) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		e.L.SetGlobal(name, lua.LNil)
	}
	e.L.SetGlobal("print", e.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(e.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// Run compiles and executes src. name labels the chunk in errors.
func (e *Engine) Run(ctx context.Context, name, src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	fn, err := e.L.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	e.count = 0
	e.exceeded = false
	top := e.L.GetTop()
	defer e.L.SetTop(top)

	start := time.Now()
	e.L.Push(fn)
	err = e.doWithRecovery(func() error {
		return e.L.PCall(0, lua.MultRet, nil)
	})
	e.log.Debug("script finished", "name", name, "calls", e.count, "elapsed", time.Since(start))

	switch {
	case err == nil:
		return nil
	case e.exceeded:
		return fmt.Errorf("%s: %w", name, ErrInstructionLimit)
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w: %v", name, ErrTimeout, ctx.Err())
	}
	return fmt.Errorf("running %s: %w", name, err)
}

// RunFile reads and runs the script at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return e.Run(ctx, path, string(src))
}

func (e *Engine) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// charge counts one doc call and aborts the script past the limit.
func (e *Engine) charge(L *lua.LState) {
	e.count++
	if e.limit > 0 && e.count > e.limit {
		e.exceeded = true
		L.RaiseError("%s", ErrInstructionLimit.Error())
	}
}

// Calls reports the doc calls made by the last run.
func (e *Engine) Calls() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// Close releases the Lua state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.L.Close()
	return nil
}
