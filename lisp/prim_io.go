package lisp

import "io"

func registerIOPrimitives(rt *Runtime) {
	prim(rt, "display", 1, 2, func(rt *Runtime, args []Value) Value {
		port := outPortArg(rt, args, 1)
		if err := rt.PortWrite(port, rt.DisplayString(args[0])); err != nil {
			return rt.Errorf(ErrType, "display: %v", err)
		}
		return Unspecified()
	})
	prim(rt, "write", 1, 2, func(rt *Runtime, args []Value) Value {
		port := outPortArg(rt, args, 1)
		if err := rt.PortWrite(port, rt.WriteString(args[0])); err != nil {
			return rt.Errorf(ErrType, "write: %v", err)
		}
		return Unspecified()
	})
	prim(rt, "newline", 0, 1, func(rt *Runtime, args []Value) Value {
		port := outPortArg(rt, args, 0)
		if err := rt.PortWrite(port, "\n"); err != nil {
			return rt.Errorf(ErrType, "newline: %v", err)
		}
		return Unspecified()
	})
	prim(rt, "write-char", 1, 2, func(rt *Runtime, args []Value) Value {
		port := outPortArg(rt, args, 1)
		if err := rt.PortWrite(port, string(GetChar(args[0]))); err != nil {
			return rt.Errorf(ErrType, "write-char: %v", err)
		}
		return Unspecified()
	})
	prim(rt, "write-string", 1, 2, func(rt *Runtime, args []Value) Value {
		port := outPortArg(rt, args, 1)
		if err := rt.PortWrite(port, rt.StringGo(args[0])); err != nil {
			return rt.Errorf(ErrType, "write-string: %v", err)
		}
		return Unspecified()
	})

	prim(rt, "read-char", 0, 1, func(rt *Runtime, args []Value) Value {
		port := inPortArg(rt, args, 0)
		r, err := rt.PortReadRune(port)
		if err == io.EOF {
			return EOF()
		}
		if err != nil {
			return rt.Errorf(ErrType, "read-char: %v", err)
		}
		return Char(r)
	})
	prim(rt, "peek-char", 0, 1, func(rt *Runtime, args []Value) Value {
		port := inPortArg(rt, args, 0)
		r, err := rt.PortPeekRune(port)
		if err == io.EOF {
			return EOF()
		}
		if err != nil {
			return rt.Errorf(ErrType, "peek-char: %v", err)
		}
		return Char(r)
	})
	prim(rt, "read-line", 0, 1, func(rt *Runtime, args []Value) Value {
		port := inPortArg(rt, args, 0)
		var buf []rune
		for {
			r, err := rt.PortReadRune(port)
			if err == io.EOF {
				if len(buf) == 0 {
					return EOF()
				}
				break
			}
			if err != nil {
				return rt.Errorf(ErrType, "read-line: %v", err)
			}
			if r == '\n' {
				break
			}
			buf = append(buf, r)
		}
		return rt.NewString(string(buf))
	})
	prim(rt, "read", 0, 1, func(rt *Runtime, args []Value) Value {
		if rt.reader == nil {
			return rt.Errorf(ErrType, "read: no reader installed on this runtime")
		}
		port := inPortArg(rt, args, 0)
		p := rt.port(port)
		v, err := rt.reader.ReadOne(rt, p.name, p.reader)
		if err == io.EOF {
			return EOF()
		}
		if err != nil {
			return rt.Errorf(ErrLexParse, "read: %v", err)
		}
		return v
	})

	prim(rt, "eof-object", 0, 0, func(rt *Runtime, args []Value) Value { return EOF() })
	prim(rt, "eof-object?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(args[0].Tag == TEOF) })
	prim(rt, "port?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(IsPort(args[0])) })
	prim(rt, "input-port?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(rt.IsInputPort(args[0])) })
	prim(rt, "output-port?", 1, 1, func(rt *Runtime, args []Value) Value { return Bool(rt.IsOutputPort(args[0])) })
	prim(rt, "close-port", 1, 1, func(rt *Runtime, args []Value) Value { rt.PortClose(args[0]); return Unspecified() })
	prim(rt, "close-input-port", 1, 1, func(rt *Runtime, args []Value) Value { rt.PortClose(args[0]); return Unspecified() })
	prim(rt, "close-output-port", 1, 1, func(rt *Runtime, args []Value) Value { rt.PortClose(args[0]); return Unspecified() })

	prim(rt, "open-input-string", 1, 1, func(rt *Runtime, args []Value) Value { return rt.OpenInputString(rt.StringGo(args[0])) })
	prim(rt, "open-output-string", 0, 0, func(rt *Runtime, args []Value) Value { return rt.OpenOutputString() })
	prim(rt, "get-output-string", 1, 1, func(rt *Runtime, args []Value) Value {
		s, ok := rt.GetOutputString(args[0])
		if !ok {
			return rt.Errorf(ErrType, "get-output-string: not a string output port")
		}
		return rt.NewString(s)
	})
	prim(rt, "open-input-file", 1, 1, func(rt *Runtime, args []Value) Value {
		p, err := rt.OpenInputFile(rt.StringGo(args[0]))
		if err != nil {
			return rt.Errorf(ErrType, "open-input-file: %v", err)
		}
		return p
	})
	prim(rt, "open-output-file", 1, 1, func(rt *Runtime, args []Value) Value {
		p, err := rt.OpenOutputFile(rt.StringGo(args[0]))
		if err != nil {
			return rt.Errorf(ErrType, "open-output-file: %v", err)
		}
		return p
	})

	prim(rt, "current-output-port", 0, 0, func(rt *Runtime, args []Value) Value { return rt.CurrentOutputPort() })
	prim(rt, "current-error-port", 0, 0, func(rt *Runtime, args []Value) Value { return rt.CurrentErrorPort() })
	prim(rt, "current-input-port", 0, 0, func(rt *Runtime, args []Value) Value { return rt.CurrentInputPort() })
}

func outPortArg(rt *Runtime, args []Value, idx int) Value {
	if len(args) > idx {
		return args[idx]
	}
	return rt.CurrentOutputPort()
}

func inPortArg(rt *Runtime, args []Value, idx int) Value {
	if len(args) > idx {
		return args[idx]
	}
	return rt.CurrentInputPort()
}
