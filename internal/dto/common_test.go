package dto

import (
	"encoding/json"
	"testing"
)

func TestPublishFlag_Truthiness(t *testing.T) {
	cases := []struct {
		body string
		set  bool
		want bool
	}{
		{`{}`, false, false},
		{`{"published_at": true}`, true, true},
		{`{"published_at": false}`, true, false},
		{`{"published_at": 1}`, true, true},
		{`{"published_at": 0}`, true, false},
		{`{"published_at": "1"}`, true, true},
		{`{"published_at": "0"}`, true, false},
		{`{"published_at": ""}`, true, false},
		{`{"published_at": "false"}`, true, false},
		{`{"published_at": "2025-06-01 10:00:00"}`, true, true},
		{`{"published_at": null}`, true, false},
	}
	for _, tc := range cases {
		var req CreateNewsRequest
		if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
			t.Fatalf("%s: 解析失败: %v", tc.body, err)
		}
		if req.PublishedAt.Set != tc.set || req.PublishedAt.Value != tc.want {
			t.Errorf("%s: 期望 set=%v value=%v，实际 set=%v value=%v",
				tc.body, tc.set, tc.want, req.PublishedAt.Set, req.PublishedAt.Value)
		}
	}
}

func TestPublishChange_AliasPrecedence(t *testing.T) {
	changed, value := PublishChange(PublishFlag{}, PublishFlag{Set: true, Value: true})
	if !changed || !value {
		t.Error("仅提供 is_published 时应生效")
	}

	changed, value = PublishChange(PublishFlag{Set: true, Value: false}, PublishFlag{Set: true, Value: true})
	if !changed || value {
		t.Error("published_at 应优先于 is_published")
	}

	if changed, _ := PublishChange(PublishFlag{}, PublishFlag{}); changed {
		t.Error("均未提供时不应修改")
	}
}

func TestNullable_OmittedNullAndValue(t *testing.T) {
	cases := []struct {
		body    string
		set     bool
		wantNil bool
	}{
		{`{}`, false, true},
		{`{"division_id": null}`, true, true},
		{`{"division_id": 3}`, true, false},
	}
	for _, tc := range cases {
		var req UpdateNewsRequest
		if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
			t.Fatalf("%s: 解析失败: %v", tc.body, err)
		}
		if req.DivisionID.Set != tc.set || (req.DivisionID.Value == nil) != tc.wantNil {
			t.Errorf("%s: 期望 set=%v nil=%v，实际 set=%v value=%v",
				tc.body, tc.set, tc.wantNil, req.DivisionID.Set, req.DivisionID.Value)
		}
	}

	var req UpdateNewsRequest
	if err := json.Unmarshal([]byte(`{"division_id": "x"}`), &req); err == nil {
		t.Error("非法取值应返回错误")
	}

	cur := new(uint)
	*cur = 7
	Nullable[uint]{}.Apply(&cur)
	if cur == nil || *cur != 7 {
		t.Error("未提供时不应修改")
	}
	Nullable[uint]{Set: true}.Apply(&cur)
	if cur != nil {
		t.Error("显式 null 应清除")
	}
	NullOf(uint(9)).Apply(&cur)
	if cur == nil || *cur != 9 {
		t.Error("应写入新值")
	}
}
