package server

import (
	"time"

	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/internal/frege/service"
	"google.golang.org/protobuf/types/known/structpb"
)

func diagnosticsToList(items []diagnostics.Diagnostic) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, d := range items {
		out = append(out, map[string]interface{}{
			"code":     string(d.Code),
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Line,
			"column":   d.Column,
		})
	}
	return out
}

func diagnosticsFromList(list *structpb.ListValue) []diagnostics.Diagnostic {
	out := make([]diagnostics.Diagnostic, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		f := v.GetStructValue().GetFields()
		d := diagnostics.Diagnostic{
			Code:    diagnostics.Code(f["code"].GetStringValue()),
			Message: f["message"].GetStringValue(),
			Line:    int(f["line"].GetNumberValue()),
			Column:  int(f["column"].GetNumberValue()),
		}
		// unknown names keep the zero severity (error)
		_ = d.Severity.UnmarshalText([]byte(f["severity"].GetStringValue()))
		out = append(out, d)
	}
	return out
}

func evaluateResponseToStruct(resp *service.EvaluateResponse) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"run_id":      resp.RunID,
		"session":     resp.Session,
		"value":       resp.Value,
		"has_value":   resp.HasValue,
		"diagnostics": diagnosticsToList(resp.Diagnostics),
		"error":       resp.Error,
		"error_code":  resp.ErrorCode,
		"duration_ms": resp.Duration.Milliseconds(),
		"cached":      resp.Cached,
	})
}

func evaluateResponseFromStruct(s *structpb.Struct) *service.EvaluateResponse {
	f := s.GetFields()
	return &service.EvaluateResponse{
		RunID:       f["run_id"].GetStringValue(),
		Session:     f["session"].GetStringValue(),
		Value:       f["value"].GetStringValue(),
		HasValue:    f["has_value"].GetBoolValue(),
		Diagnostics: diagnosticsFromList(f["diagnostics"].GetListValue()),
		Error:       f["error"].GetStringValue(),
		ErrorCode:   f["error_code"].GetStringValue(),
		Duration:    time.Duration(f["duration_ms"].GetNumberValue()) * time.Millisecond,
		Cached:      f["cached"].GetBoolValue(),
	}
}

func parseResponseToStruct(resp *service.ParseResponse) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"tree":        resp.Tree,
		"text":        resp.Text,
		"nodes":       resp.Nodes,
		"diagnostics": diagnosticsToList(resp.Diagnostics),
		"cached":      resp.Cached,
	})
}

func parseResponseFromStruct(s *structpb.Struct) *service.ParseResponse {
	f := s.GetFields()
	nodes := make([]interface{}, 0)
	if list := f["nodes"].GetListValue(); list != nil {
		nodes = list.AsSlice()
	}
	return &service.ParseResponse{
		Tree:        f["tree"].GetStringValue(),
		Text:        f["text"].GetStringValue(),
		Nodes:       nodes,
		Diagnostics: diagnosticsFromList(f["diagnostics"].GetListValue()),
		Cached:      f["cached"].GetBoolValue(),
	}
}
