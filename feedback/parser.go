package feedback

import (
	"strconv"
	"strings"
)

// Parse turns one NUL-delimited feedback record into a typed Event. Any
// unrecognized leading token, or a recognized type with a malformed
// payload, yields a TypeUnknown event carrying the original line. Parse
// never fails — it always returns an Event.
func Parse(line string) Event {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{Type: TypeUnknown, Raw: line}
	}

	switch fields[0] {
	case TypeParamSet, TypeOutputSet:
		return parseParamLike(fields[0], fields, line)
	case TypeAudioMonitor:
		return parseAudioMonitor(fields, line)
	case TypeMIDIMapped:
		return parseMIDIMapped(fields, line)
	case TypeMIDIControlChange:
		return parseMIDIControlChange(fields, line)
	case TypeMIDIProgramChange:
		return parseMIDIProgramChange(fields, line)
	case TypeTransport:
		return parseTransport(fields, line)
	case TypePatchSet:
		return parsePatchSet(fields, line)
	case TypeLog:
		return parseLog(fields, line)
	case TypeCPULoad:
		return parseCPULoad(fields, line)
	case TypeDataFinish:
		return Event{Type: TypeDataFinish}
	case TypeCCMap:
		rest := restOfLine(line, fields[0])
		return Event{Type: TypeCCMap, Data: rest}
	default:
		return Event{Type: TypeUnknown, Raw: line}
	}
}

func parseParamLike(kind string, fields []string, raw string) Event {
	if len(fields) != 4 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	effectID, err1 := parseU32(fields[1])
	value, err2 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	return Event{Type: kind, EffectID: effectID, Symbol: fields[2], Value: value}
}

func parseAudioMonitor(fields []string, raw string) Event {
	if len(fields) != 3 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	index, err1 := parseU32(fields[1])
	value, err2 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	return Event{Type: TypeAudioMonitor, Index: index, Value: value}
}

func parseMIDIMapped(fields []string, raw string) Event {
	if len(fields) != 5 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	effectID, err1 := parseU32(fields[1])
	channel, err2 := parseU32(fields[3])
	controller, err3 := parseU32(fields[4])
	if err1 != nil || err2 != nil || err3 != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	return Event{Type: TypeMIDIMapped, EffectID: effectID, Symbol: fields[2], Channel: channel, Controller: controller}
}

func parseMIDIControlChange(fields []string, raw string) Event {
	if len(fields) != 4 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	channel, err1 := parseU32(fields[1])
	control, err2 := parseU32(fields[2])
	value, err3 := parseU32(fields[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	return Event{Type: TypeMIDIControlChange, Channel: channel, Control: control, Value: float64(value)}
}

func parseMIDIProgramChange(fields []string, raw string) Event {
	if len(fields) != 3 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	program, err1 := parseU32(fields[1])
	channel, err2 := parseU32(fields[2])
	if err1 != nil || err2 != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	return Event{Type: TypeMIDIProgramChange, Program: program, Channel: channel}
}

func parseTransport(fields []string, raw string) Event {
	if len(fields) != 4 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	rolling, err1 := parseBool(fields[1])
	bpb, err2 := strconv.ParseFloat(fields[2], 64)
	bpm, err3 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	return Event{Type: TypeTransport, Rolling: rolling, BPB: bpb, BPM: bpm}
}

func parsePatchSet(fields []string, raw string) Event {
	if len(fields) < 3 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	instance, err := parseU32(fields[1])
	if err != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	symbol := fields[2]
	jsonPart := restOfLineAfterFields(raw, 3)
	return Event{Type: TypePatchSet, Instance: instance, Symbol: symbol, Data: jsonPart}
}

func parseLog(fields []string, raw string) Event {
	if len(fields) < 2 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	level, err := parseU32(fields[1])
	if err != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	message := restOfLineAfterFields(raw, 2)
	return Event{Type: TypeLog, Level: level, Message: message}
}

func parseCPULoad(fields []string, raw string) Event {
	if len(fields) != 4 {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	load, err1 := strconv.ParseFloat(fields[1], 64)
	maxLoad, err2 := strconv.ParseFloat(fields[2], 64)
	xruns, err3 := parseU32(fields[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return Event{Type: TypeUnknown, Raw: raw}
	}
	return Event{Type: TypeCPULoad, Load: load, MaxLoad: maxLoad, Xruns: xruns}
}

func parseU32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "1", "true", "True":
		return true, nil
	case "0", "false", "False":
		return false, nil
	default:
		return false, strconv.ErrSyntax
	}
}

// restOfLine returns everything in raw after the leading keyword, trimmed.
func restOfLine(raw, keyword string) string {
	rest := strings.TrimPrefix(raw, keyword)
	return strings.TrimSpace(rest)
}

// restOfLineAfterFields returns the remainder of raw after skipping n
// whitespace-separated leading fields, preserving internal whitespace.
func restOfLineAfterFields(raw string, n int) string {
	trimmed := strings.TrimLeft(raw, " \t")
	for i := 0; i < n; i++ {
		idx := strings.IndexAny(trimmed, " \t")
		if idx < 0 {
			return ""
		}
		trimmed = strings.TrimLeft(trimmed[idx:], " \t")
	}
	return trimmed
}
