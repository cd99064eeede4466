package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cmmc/validator/internal/resolvertest"
	"cmmc/validator/pkg/resolver"
	"cmmc/validator/pkg/resolver/mocks"
	"cmmc/validator/pkg/retry"
)

const goodUSI = "mzspec:MSV000001:file.mzML:scan:1"

func testPolicy(clock retry.Clock) retry.Policy {
	return retry.Policy{MaxAttempts: 3, Delay: time.Second, Multiplier: 1, Clock: clock}
}

func statusErr(code int) error {
	return &resolver.StatusError{Service: resolver.ServiceIdentifier, StatusCode: code}
}

func TestValidIdentifierSyntax(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{goodUSI, true},
		{"mzspec:MSV000078547:120228_nbut_3610_it_it_take2:scan:389", true},
		{"mzspec:GNPS:TASK-c9 5a/spectra.mgf:index:1", true},
		{"mzspec:GNPS:TASK-c9 5a/spectra.mgf:index:1:", false},
		{"mzspec:a:b:c", true},
		{"not-a-usi", false},
		{"mzspec:a:b", false},
		{"MZSPEC:a:b:c", false},
		{"mzspec:a:b:c:d:e", false},
		{"mzspec:a:b:c$", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidIdentifierSyntax(tt.id))
		})
	}
}

func TestIdentifierValidator_Retries(t *testing.T) {
	tests := []struct {
		name      string
		responses []error
		want      Kind
		status    int
		waits     int
	}{
		{
			name:      "heals on third attempt",
			responses: []error{statusErr(500), statusErr(500), nil},
			want:      KindOK,
			waits:     2,
		},
		{
			name:      "exhausted after three attempts",
			responses: []error{statusErr(500), statusErr(500), statusErr(500)},
			want:      KindNetworkFailure,
			status:    500,
			waits:     2,
		},
		{
			name:      "last status is reported",
			responses: []error{statusErr(502), statusErr(503), statusErr(404)},
			want:      KindNetworkFailure,
			status:    404,
			waits:     2,
		},
		{
			name:      "transport error is not retried",
			responses: []error{&resolver.TransportError{Service: resolver.ServiceIdentifier, Cause: errors.New("connection refused")}},
			want:      KindNetworkFailure,
			waits:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mock := mocks.NewMockResolver(ctrl)

			var prev *gomock.Call
			for _, resp := range tt.responses {
				call := mock.EXPECT().Lookup(gomock.Any(), goodUSI).Return(resp).Times(1)
				if prev != nil {
					call.After(prev)
				}
				prev = call
			}

			clock := &resolvertest.Clock{}
			v := NewIdentifierValidator(mock, testPolicy(clock), 0)
			got := v.Validate(context.Background(), ptr(goodUSI))

			assert.Equal(t, tt.want, got.Kind)
			require.Len(t, got.Items, 1)
			assert.Equal(t, tt.status, got.Items[0].Verdict.StatusCode)
			assert.Len(t, clock.Waits(), tt.waits)
		})
	}
}

func TestIdentifierValidator_MalformedMakesNoCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockResolver(ctrl)

	v := NewIdentifierValidator(mock, testPolicy(&resolvertest.Clock{}), 0)
	got := v.Validate(context.Background(), ptr("not-a-usi"))

	assert.Equal(t, KindInvalid, got.Kind)
	assert.Equal(t, `{"not-a-usi":"FAILED: Invalid USI"}`, got.String())
}

func TestIdentifierValidator_MultipleIdentifiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockResolver(ctrl)

	other := "mzspec:MSV000002:run.mzML:scan:7"
	mock.EXPECT().Lookup(gomock.Any(), goodUSI).Return(nil).Times(1)
	mock.EXPECT().Lookup(gomock.Any(), other).Return(statusErr(500)).Times(3)

	v := NewIdentifierValidator(mock, testPolicy(&resolvertest.Clock{}), 0)

	t.Run("network failure only", func(t *testing.T) {
		got := v.Validate(context.Background(), ptr(goodUSI+"; "+other))
		assert.Equal(t, KindNetworkFailure, got.Kind)
		assert.Equal(t, "Failing identifiers - "+other, got.Reason)
		assert.Equal(t,
			`{"`+goodUSI+`":"Ok","`+other+`":"FAILED - Status code 500"}`,
			got.String())
	})

	t.Run("invalid takes precedence", func(t *testing.T) {
		mock.EXPECT().Lookup(gomock.Any(), goodUSI).Return(nil).Times(1)
		mock.EXPECT().Lookup(gomock.Any(), other).Return(statusErr(500)).Times(3)

		got := v.Validate(context.Background(), ptr(goodUSI+";bogus;"+other+";"+goodUSI))
		assert.Equal(t, KindInvalid, got.Kind)
		require.Len(t, got.Items, 3, "duplicates collapse")
		assert.Equal(t, "bogus", got.Items[1].Value)
	})
}

func TestIdentifierValidator_NoData(t *testing.T) {
	v := NewIdentifierValidator(mocks.NewMockResolver(gomock.NewController(t)), testPolicy(nil), 0)

	got := v.Validate(context.Background(), nil)
	assert.Equal(t, KindNoData, got.Kind)
	assert.False(t, got.Failed())
	assert.Equal(t, `{"No USI":"Ok"}`, got.String())

	assert.Equal(t, KindNoData, v.Validate(context.Background(), ptr("  ")).Kind)
}

func TestIdentifierValidator_Memo(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockResolver(ctrl)

	flaky := "mzspec:MSV000003:f.mzML:scan:2"
	mock.EXPECT().Lookup(gomock.Any(), goodUSI).Return(nil).Times(1)
	mock.EXPECT().Lookup(gomock.Any(), flaky).Return(statusErr(503)).Times(6)

	v := NewIdentifierValidator(mock, testPolicy(&resolvertest.Clock{}), 16)

	for i := 0; i < 3; i++ {
		assert.Equal(t, KindOK, v.Validate(context.Background(), ptr(goodUSI)).Kind)
	}
	for i := 0; i < 2; i++ {
		assert.Equal(t, KindNetworkFailure, v.Validate(context.Background(), ptr(flaky)).Kind)
	}
}

func TestIdentifierValidator_AgainstServer(t *testing.T) {
	server := resolvertest.NewMockServer("usi1")
	defer server.Close()
	server.SetStatuses(goodUSI, 500, 500, 200)

	cfg := resolver.IdentifierConfig()
	cfg.BaseURL = server.URL() + "/json/"
	r, err := resolver.New(cfg)
	require.NoError(t, err)
	defer r.Close()

	v := NewIdentifierValidator(r, testPolicy(&resolvertest.Clock{}), 0)
	got := v.Validate(context.Background(), ptr(goodUSI))

	assert.Equal(t, KindOK, got.Kind)
	assert.Equal(t, 3, server.CountFor(goodUSI))
}
