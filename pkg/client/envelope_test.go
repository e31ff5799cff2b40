package client

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Success(t *testing.T) {
	body := []byte(`{"schoolInfo":[
		{"head":[{"list_total_count":2},{"RESULT":{"CODE":"INFO-000","MESSAGE":"정상 처리되었습니다."}}]},
		{"row":[{"SD_SCHUL_CODE":"7010536","GRADE":3},{"SD_SCHUL_CODE":"7010537","GRADE":1}]}
	]}`)

	page, err := Decode(ServiceSchoolInfo, body)
	require.NoError(t, err)

	assert.True(t, page.HasTotal)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "7010536", page.Rows[0]["SD_SCHUL_CODE"])
	assert.Equal(t, json.Number("3"), page.Rows[0]["GRADE"])
}

func TestDecode_TotalAbsent(t *testing.T) {
	body := []byte(`{"classInfo":[{"head":[{"RESULT":{"CODE":"INFO-000","MESSAGE":"ok"}}]},{"row":[{"CLASS_NM":"1"}]}]}`)

	page, err := Decode(ServiceClassroom, body)
	require.NoError(t, err)

	assert.False(t, page.HasTotal)
	assert.Len(t, page.Rows, 1)
}

func TestDecode_NoData(t *testing.T) {
	body := []byte(`{"RESULT":{"CODE":"INFO-200","MESSAGE":"해당하는 데이터가 없습니다."}}`)

	_, err := Decode(ServiceMeal, body)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecode_ServiceError(t *testing.T) {
	body := []byte(`{"RESULT":{"CODE":"ERROR-300","MESSAGE":"필수 값이 누락되어 있습니다."}}`)

	_, err := Decode(ServiceMeal, body)

	var internal *InternalServiceError
	require.True(t, errors.As(err, &internal))
	assert.Equal(t, "ERROR-300", internal.Code)
	assert.Equal(t, "필수 값이 누락되어 있습니다.", internal.Message)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>busy</html>`},
		{"wrong service key", `{"classInfo":[{"head":[]},{"row":[]}]}`},
		{"missing row block", `{"schoolInfo":[{"head":[{"list_total_count":1}]}]}`},
		{"row not an array", `{"schoolInfo":[{"head":[]},{"row":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(ServiceSchoolInfo, []byte(tt.body))
			assert.ErrorIs(t, err, ErrMalformedEnvelope)
		})
	}
}

func TestPeek(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantCode    string
	}{
		{"success", `{"schoolInfo":[{"head":[]},{"row":[]}]}`, true, ""},
		{"no data", `{"RESULT":{"CODE":"INFO-200","MESSAGE":"x"}}`, false, "INFO-200"},
		{"quota", `{"RESULT":{"CODE":"ERROR-337","MESSAGE":"x"}}`, false, "ERROR-337"},
		{"garbage", `nope`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			success, code := peek(ServiceSchoolInfo, []byte(tt.body))
			assert.Equal(t, tt.wantSuccess, success)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
