package repository

import "errors"

var ErrNotFound = errors.New("not found")

// payment_events の event_id 重複。冪等な再配送として扱う（エラーにしない）。
var ErrDuplicateEvent = errors.New("duplicate payment event")
