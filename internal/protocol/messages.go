package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	errStringTooLong = errors.New("protocol: string exceeds 64KB limit")
	errPayloadShort  = errors.New("protocol: payload too short")
)

func encodeString(buf *bytes.Buffer, value string) error {
	if len(value) > 0xFFFF {
		return errStringTooLong
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(value))); err != nil {
		return err
	}
	if len(value) > 0 {
		if _, err := buf.WriteString(value); err != nil {
			return err
		}
	}
	return nil
}

func decodeString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, errPayloadShort
	}
	length := binary.LittleEndian.Uint16(b[:2])
	b = b[2:]
	if uint16(len(b)) < length {
		return "", nil, errPayloadShort
	}
	return string(b[:length]), b[length:], nil
}

// AttachRequest opens or resumes a session (client -> server).
type AttachRequest struct {
	ClientID  [16]byte
	Session   string // name; weftd treats empty as "default"
	Cols      uint16
	Rows      uint16
	Mirrored  bool
}

func EncodeAttachRequest(a AttachRequest) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 24+len(a.Session)))
	buf.Write(a.ClientID[:])
	if err := encodeString(buf, a.Session); err != nil {
		return nil, err
	}
	binary.Write(buf, binary.LittleEndian, a.Cols)
	binary.Write(buf, binary.LittleEndian, a.Rows)
	if a.Mirrored {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

func DecodeAttachRequest(b []byte) (AttachRequest, error) {
	var a AttachRequest
	if len(b) < 16 {
		return a, errPayloadShort
	}
	copy(a.ClientID[:], b[:16])
	name, rest, err := decodeString(b[16:])
	if err != nil {
		return a, err
	}
	a.Session = name
	if len(rest) < 5 {
		return a, errPayloadShort
	}
	a.Cols = binary.LittleEndian.Uint16(rest[0:2])
	a.Rows = binary.LittleEndian.Uint16(rest[2:4])
	a.Mirrored = rest[4] != 0
	return a, nil
}

// AttachAccept confirms a session is ready for input (server -> client).
type AttachAccept struct {
	SessionID [16]byte
}

func EncodeAttachAccept(a AttachAccept) ([]byte, error) { return a.SessionID[:], nil }

func DecodeAttachAccept(b []byte) (AttachAccept, error) {
	var a AttachAccept
	if len(b) < 16 {
		return a, errPayloadShort
	}
	copy(a.SessionID[:], b[:16])
	return a, nil
}

// InputEvent carries raw keyboard bytes for the focused pane, already
// translated client-side (client -> server).
type InputEvent struct {
	Data []byte
}

func EncodeInputEvent(e InputEvent) ([]byte, error) { return e.Data, nil }

func DecodeInputEvent(b []byte) (InputEvent, error) { return InputEvent{Data: b}, nil }

// Action is a named multiplexer command (split, close pane, move
// focus, new tab, swap layout, ...) with optional string args
// (client -> server).
type Action struct {
	Name string
	Args []string
}

func EncodeAction(a Action) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := encodeString(buf, a.Name); err != nil {
		return nil, err
	}
	binary.Write(buf, binary.LittleEndian, uint16(len(a.Args)))
	for _, arg := range a.Args {
		if err := encodeString(buf, arg); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func DecodeAction(b []byte) (Action, error) {
	var a Action
	name, rest, err := decodeString(b)
	if err != nil {
		return a, err
	}
	a.Name = name
	if len(rest) < 2 {
		return a, errPayloadShort
	}
	n := binary.LittleEndian.Uint16(rest[:2])
	rest = rest[2:]
	a.Args = make([]string, 0, n)
	for i := uint16(0); i < n; i++ {
		var arg string
		arg, rest, err = decodeString(rest)
		if err != nil {
			return a, err
		}
		a.Args = append(a.Args, arg)
	}
	return a, nil
}

// ResizeEvent reports the client terminal's new size (client -> server).
type ResizeEvent struct {
	Cols, Rows uint16
}

func EncodeResizeEvent(r ResizeEvent) ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], r.Cols)
	binary.LittleEndian.PutUint16(buf[2:4], r.Rows)
	return buf, nil
}

func DecodeResizeEvent(b []byte) (ResizeEvent, error) {
	var r ResizeEvent
	if len(b) < 4 {
		return r, errPayloadShort
	}
	r.Cols = binary.LittleEndian.Uint16(b[0:2])
	r.Rows = binary.LittleEndian.Uint16(b[2:4])
	return r, nil
}

// RenderCell mirrors vt.Cell in a wire-stable form.
type RenderCell struct {
	Rune        rune
	Width       uint8
	FgMode      uint8
	FgValue     uint8
	FgR, FgG, FgB byte
	BgMode      uint8
	BgValue     uint8
	BgR, BgG, BgB byte
	Flags       uint16
}

// RenderChunk is one changed row of one pane.
type RenderChunk struct {
	PaneID [16]byte
	X, Y   int32
	Cells  []RenderCell
}

// Render carries the set of changed chunks for the current frame plus
// the focused pane's cursor position (server -> client). Encoding is
// intentionally simple (fixed-size cells, no varint packing): panes
// rarely exceed a few hundred columns, so frame size is dominated by
// how many cells actually changed, not encoding overhead.
type Render struct {
	Chunks    []RenderChunk
	CursorX   int32
	CursorY   int32
	CursorPaneID [16]byte
	CursorVisible bool
}

func EncodeRender(r Render) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	binary.Write(buf, binary.LittleEndian, uint32(len(r.Chunks)))
	for _, c := range r.Chunks {
		buf.Write(c.PaneID[:])
		binary.Write(buf, binary.LittleEndian, c.X)
		binary.Write(buf, binary.LittleEndian, c.Y)
		binary.Write(buf, binary.LittleEndian, uint32(len(c.Cells)))
		for _, cell := range c.Cells {
			binary.Write(buf, binary.LittleEndian, int32(cell.Rune))
			buf.WriteByte(cell.Width)
			buf.WriteByte(cell.FgMode)
			buf.WriteByte(cell.FgValue)
			buf.WriteByte(cell.FgR)
			buf.WriteByte(cell.FgG)
			buf.WriteByte(cell.FgB)
			buf.WriteByte(cell.BgMode)
			buf.WriteByte(cell.BgValue)
			buf.WriteByte(cell.BgR)
			buf.WriteByte(cell.BgG)
			buf.WriteByte(cell.BgB)
			binary.Write(buf, binary.LittleEndian, cell.Flags)
		}
	}
	buf.Write(r.CursorPaneID[:])
	binary.Write(buf, binary.LittleEndian, r.CursorX)
	binary.Write(buf, binary.LittleEndian, r.CursorY)
	if r.CursorVisible {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}

func DecodeRender(b []byte) (Render, error) {
	var r Render
	if len(b) < 4 {
		return r, errPayloadShort
	}
	n := binary.LittleEndian.Uint32(b[:4])
	b = b[4:]
	r.Chunks = make([]RenderChunk, 0, n)
	for i := uint32(0); i < n; i++ {
		var c RenderChunk
		if len(b) < 16+4+4+4 {
			return r, errPayloadShort
		}
		copy(c.PaneID[:], b[:16])
		b = b[16:]
		c.X = int32(binary.LittleEndian.Uint32(b[:4]))
		b = b[4:]
		c.Y = int32(binary.LittleEndian.Uint32(b[:4]))
		b = b[4:]
		numCells := binary.LittleEndian.Uint32(b[:4])
		b = b[4:]
		c.Cells = make([]RenderCell, 0, numCells)
		for j := uint32(0); j < numCells; j++ {
			if len(b) < 4+1+1+1+1+1+1+1+1+1+1+2 {
				return r, errPayloadShort
			}
			var cell RenderCell
			cell.Rune = rune(int32(binary.LittleEndian.Uint32(b[:4])))
			b = b[4:]
			cell.Width = b[0]
			cell.FgMode = b[1]
			cell.FgValue = b[2]
			cell.FgR = b[3]
			cell.FgG = b[4]
			cell.FgB = b[5]
			cell.BgMode = b[6]
			cell.BgValue = b[7]
			cell.BgR = b[8]
			cell.BgG = b[9]
			cell.BgB = b[10]
			b = b[11:]
			cell.Flags = binary.LittleEndian.Uint16(b[:2])
			b = b[2:]
			c.Cells = append(c.Cells, cell)
		}
		r.Chunks = append(r.Chunks, c)
	}
	if len(b) < 16+4+4+1 {
		return r, errPayloadShort
	}
	copy(r.CursorPaneID[:], b[:16])
	b = b[16:]
	r.CursorX = int32(binary.LittleEndian.Uint32(b[:4]))
	b = b[4:]
	r.CursorY = int32(binary.LittleEndian.Uint32(b[:4]))
	b = b[4:]
	r.CursorVisible = b[0] != 0
	return r, nil
}

// SwitchToMode notifies the client which input mode is active (normal,
// resize, rename, ...) so it can adjust its status line.
type SwitchToMode struct {
	Mode string
}

func EncodeSwitchToMode(s SwitchToMode) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := encodeString(buf, s.Mode); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeSwitchToMode(b []byte) (SwitchToMode, error) {
	mode, _, err := decodeString(b)
	return SwitchToMode{Mode: mode}, err
}

// Exit tells the client the session ended, with an optional reason.
type Exit struct {
	Reason string
}

func EncodeExit(e Exit) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := encodeString(buf, e.Reason); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeExit(b []byte) (Exit, error) {
	reason, _, err := decodeString(b)
	return Exit{Reason: reason}, err
}

// LogLine forwards a server-side diagnostic line to an attached client.
// weftctl ignores MsgLog frames.
type LogLine struct {
	Line string
}

func EncodeLogLine(l LogLine) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := encodeString(buf, l.Line); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeLogLine(b []byte) (LogLine, error) {
	line, _, err := decodeString(b)
	return LogLine{Line: line}, err
}

// ErrorFrame communicates a protocol- or request-level error.
type ErrorFrame struct {
	Code    uint16
	Message string
}

func EncodeErrorFrame(e ErrorFrame) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	binary.Write(buf, binary.LittleEndian, e.Code)
	if err := encodeString(buf, e.Message); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeErrorFrame(b []byte) (ErrorFrame, error) {
	var e ErrorFrame
	if len(b) < 2 {
		return e, errPayloadShort
	}
	e.Code = binary.LittleEndian.Uint16(b[:2])
	msg, _, err := decodeString(b[2:])
	if err != nil {
		return e, err
	}
	e.Message = msg
	return e, nil
}
