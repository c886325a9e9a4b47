// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "errors"

var (
	ErrNotFound         = errors.New("ErrNotFound")
	ErrNoBalance        = errors.New("ErrNoBalance")
	ErrAmount           = errors.New("ErrAmount")
	ErrSendSameToRecv   = errors.New("ErrSendSameToRecv")
	ErrActionNotSupport = errors.New("ErrActionNotSupport")
	ErrInvalidParam     = errors.New("ErrInvalidParam")
	ErrExecNameNotAllow = errors.New("ErrExecNameNotAllow")
)
