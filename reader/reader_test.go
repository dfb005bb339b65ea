package reader_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperlisp/lumen/lisp"
	"github.com/hyperlisp/lumen/reader"
)

func newRuntime(t *testing.T) *lisp.Runtime {
	t.Helper()
	return lisp.NewRuntime()
}

func readAll(t *testing.T, src string) []lisp.Value {
	t.Helper()
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader(src))
	require.NoError(t, err)
	return forms
}

func write(rt *lisp.Runtime, v lisp.Value) string { return rt.WriteString(v) }

func TestReadAtoms(t *testing.T) {
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader(`42 -7 3.5 foo #t #f #true #false`))
	require.NoError(t, err)
	require.Len(t, forms, 8)
	assert.Equal(t, "42", write(rt, forms[0]))
	assert.Equal(t, "-7", write(rt, forms[1]))
	assert.Equal(t, "3.5", write(rt, forms[2]))
	assert.Equal(t, "foo", write(rt, forms[3]))
	assert.Equal(t, "#t", write(rt, forms[4]))
	assert.Equal(t, "#f", write(rt, forms[5]))
	assert.Equal(t, "#t", write(rt, forms[6]))
	assert.Equal(t, "#f", write(rt, forms[7]))
}

func TestReadLists(t *testing.T) {
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader(`(1 2 3) (a . b) ()`))
	require.NoError(t, err)
	require.Len(t, forms, 3)
	assert.Equal(t, "(1 2 3)", write(rt, forms[0]))
	assert.Equal(t, "(a . b)", write(rt, forms[1]))
	assert.Equal(t, "()", write(rt, forms[2]))
}

func TestReadAbbreviations(t *testing.T) {
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader("'a `(a ,b ,@c)"))
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "'a", write(rt, forms[0]))
	assert.Equal(t, "`(a ,b ,@c)", write(rt, forms[1]))
}

func TestReadStrings(t *testing.T) {
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader(`"hello\nworld" "escaped \"quote\""`))
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "hello\nworld", rt.StringGo(forms[0]))
	assert.Equal(t, `escaped "quote"`, rt.StringGo(forms[1]))
}

func TestReadStringLineContinuation(t *testing.T) {
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader("\"a\\\n   b\""))
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "ab", rt.StringGo(forms[0]))
}

func TestReadChars(t *testing.T) {
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader(`#\a #\space #\newline #\x41`))
	require.NoError(t, err)
	require.Len(t, forms, 4)
	assert.Equal(t, 'a', lisp.GetChar(forms[0]))
	assert.Equal(t, ' ', lisp.GetChar(forms[1]))
	assert.Equal(t, '\n', lisp.GetChar(forms[2]))
	assert.Equal(t, 'A', lisp.GetChar(forms[3]))
}

func TestReadVectorAndBytevector(t *testing.T) {
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader(`#(1 2 3) #u8(0 255 128)`))
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "#(1 2 3)", write(rt, forms[0]))
	bs := rt.BytevectorBytes(forms[1])
	assert.Equal(t, []byte{0, 255, 128}, bs)
}

func TestReadComments(t *testing.T) {
	rt := newRuntime(t)
	forms, err := reader.New().Read(rt, "test", strings.NewReader(`
		; a line comment
		1
		#| a block
		   #| nested |#
		   comment |#
		2
		#;(this is skipped) 3
	`))
	require.NoError(t, err)
	require.Len(t, forms, 3)
	assert.Equal(t, "1", write(rt, forms[0]))
	assert.Equal(t, "2", write(rt, forms[1]))
	assert.Equal(t, "3", write(rt, forms[2]))
}

func TestReadOneRepeatedOnOnePort(t *testing.T) {
	rt := newRuntime(t)
	r := strings.NewReader("1 2 3")
	var got []string
	for {
		v, err := reader.New().ReadOne(rt, "port", r)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, write(rt, v))
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestIncompleteInput(t *testing.T) {
	rt := newRuntime(t)
	cases := []string{
		"(1 2",
		`"unterminated`,
		"#|unterminated",
		"'",
		"#(1 2",
		"#u8(1 2",
	}
	for _, src := range cases {
		_, err := reader.New().Read(rt, "test", strings.NewReader(src))
		require.Error(t, err, "src=%q", src)
		assert.True(t, errors.Is(err, reader.ErrIncompleteInput), "src=%q: %v", src, err)
	}
}

func TestSyntaxErrors(t *testing.T) {
	rt := newRuntime(t)
	cases := []string{
		")",
		"(1 . 2 3)",
	}
	for _, src := range cases {
		_, err := reader.New().Read(rt, "test", strings.NewReader(src))
		require.Error(t, err, "src=%q", src)
		assert.False(t, errors.Is(err, reader.ErrIncompleteInput), "src=%q should not be incomplete", src)
	}
}

func TestReadAll(t *testing.T) {
	forms := readAll(t, "1 2 3")
	assert.Len(t, forms, 3)
}
