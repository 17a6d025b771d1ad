package apierr

import (
	"errors"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CBadZip, 400},
		{V043Validation, 400},
		{S020SessionNotFound, 404},
		{S012Timeout, 408},
		{S018Oversize, 413},
		{S019SessionInUse, 409},
		{S011UpstreamServerErr, 502},
		{AInternal, 500},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.code); got != c.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(S012Timeout) {
		t.Error("S012Timeout should be retryable")
	}
	if Retryable(CBadZip) {
		t.Error("CBadZip should not be retryable")
	}
}

func TestNewAndError(t *testing.T) {
	err := New(CBadZip, "bad zip", map[string]string{"path": "a.xml"})
	if err.Code != CBadZip {
		t.Errorf("Code = %s, want %s", err.Code, CBadZip)
	}
	if err.Error() != "C001: bad zip" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CXMLParse, nil, "parse failed at %d", 42)
	if err.Message != "parse failed at 42" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestWithCorrelation(t *testing.T) {
	orig := New(CBadZip, "bad zip", nil)
	withID := orig.WithCorrelation("abc123")
	if orig.Correlation != "" {
		t.Error("WithCorrelation must not mutate the receiver")
	}
	if withID.Correlation != "abc123" {
		t.Errorf("Correlation = %q, want abc123", withID.Correlation)
	}
}

func TestAs(t *testing.T) {
	if As(nil) != nil {
		t.Error("As(nil) should be nil")
	}

	own := New(CBadZip, "bad zip", nil)
	if got := As(own); got != own {
		t.Error("As should return the same *Error unchanged")
	}

	wrapped := As(errors.New("boom"))
	if wrapped.Code != AInternal {
		t.Errorf("As(plain error) Code = %s, want %s", wrapped.Code, AInternal)
	}
	if wrapped.Message != "boom" {
		t.Errorf("As(plain error) Message = %q", wrapped.Message)
	}
}
