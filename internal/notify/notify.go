// Package notify は作成・削除の成功時に出す一時的な通知を扱います。
package notify

import "time"

// DefaultDuration は通知が自動で消えるまでの時間です。
const DefaultDuration = 3000 * time.Millisecond

// State は通知の表示状態です。
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Notification は Hidden と Visible の2状態だけを持ちます。
// 表示中に再度 Show しても表示は延長されません。
// 表示ごとに世代番号を振り、古いタイマーが新しい通知を消さないようにします。
type Notification struct {
	state    State
	gen      int
	Duration time.Duration
}

// New は非表示の通知を作成します。
func New() *Notification {
	return &Notification{Duration: DefaultDuration}
}

// Show は通知を表示します。started が true のときだけ呼び出し側で
// Duration 後に Expire(gen) を呼ぶタイマーを開始します。
func (n *Notification) Show() (gen int, started bool) {
	if n.state == Visible {
		return n.gen, false
	}
	n.gen++
	n.state = Visible
	return n.gen, true
}

// Expire はタイマー満了を処理します。世代が一致した場合だけ非表示にします。
func (n *Notification) Expire(gen int) {
	if n.state == Visible && gen == n.gen {
		n.state = Hidden
	}
}

// Dismiss は通知を即座に閉じます。
func (n *Notification) Dismiss() {
	n.state = Hidden
}

func (n *Notification) Visible() bool {
	return n.state == Visible
}

func (n *Notification) State() State {
	return n.state
}
