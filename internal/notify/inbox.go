package notify

import (
	"slices"
	"sync"

	"teamCalendar/internal/models/notification"

	"github.com/google/uuid"
)

type key struct {
	typ    notification.Type
	taskID uuid.UUID
}

type box struct {
	items []notification.Notification
	// emitted помнит уже выданные уведомления, даже если их закрыли
	emitted map[key]struct{}
}

// Inbox хранит уведомления по получателям
type Inbox struct {
	mtx   sync.RWMutex
	boxes map[string]*box
}

func NewInbox() *Inbox {
	return &Inbox{boxes: make(map[string]*box)}
}

func (in *Inbox) get(recipient string) *box {
	b, ok := in.boxes[recipient]
	if !ok {
		b = &box{emitted: make(map[key]struct{})}
		in.boxes[recipient] = b
	}
	return b
}

// Emitted - id задач, по которым получатель уже получил уведомление данного типа
func (in *Inbox) Emitted(recipient string, typ notification.Type) map[uuid.UUID]struct{} {
	in.mtx.RLock()
	defer in.mtx.RUnlock()

	res := make(map[uuid.UUID]struct{})
	if b, ok := in.boxes[recipient]; ok {
		for k := range b.emitted {
			if k.typ == typ {
				res[k.taskID] = struct{}{}
			}
		}
	}
	return res
}

// Push добавляет уведомления, повторы по (тип, задача) отбрасываются.
// Возвращает число реально добавленных.
func (in *Inbox) Push(recipient string, notes ...notification.Notification) int {
	in.mtx.Lock()
	defer in.mtx.Unlock()

	b := in.get(recipient)
	added := 0
	for _, n := range notes {
		k := key{typ: n.Type, taskID: n.TaskID}
		if _, ok := b.emitted[k]; ok {
			continue
		}
		b.emitted[k] = struct{}{}
		n.RecipientID = recipient
		b.items = append(b.items, n)
		added++
	}
	return added
}

// List - уведомления получателя, новые первыми
func (in *Inbox) List(recipient string) []notification.Notification {
	in.mtx.RLock()
	defer in.mtx.RUnlock()

	b, ok := in.boxes[recipient]
	if !ok {
		return []notification.Notification{}
	}
	res := slices.Clone(b.items)
	slices.Reverse(res)
	return res
}

func (in *Inbox) Dismiss(recipient string, id uuid.UUID) bool {
	in.mtx.Lock()
	defer in.mtx.Unlock()

	b, ok := in.boxes[recipient]
	if !ok {
		return false
	}
	before := len(b.items)
	b.items = slices.DeleteFunc(b.items, func(n notification.Notification) bool {
		return n.ID == id
	})
	return len(b.items) != before
}

func (in *Inbox) Clear(recipient string) {
	in.mtx.Lock()
	defer in.mtx.Unlock()

	if b, ok := in.boxes[recipient]; ok {
		b.items = nil
	}
}

// Forget снимает пометку об отправке late_task по задаче у всех получателей,
// чтобы задача, снова ставшая просроченной, дала новое уведомление.
// Уже показанные уведомления не трогаются.
func (in *Inbox) Forget(taskID uuid.UUID) {
	in.mtx.Lock()
	defer in.mtx.Unlock()

	for _, b := range in.boxes {
		delete(b.emitted, key{typ: notification.TypeLateTask, taskID: taskID})
	}
}

// Drop удаляет всё, что связано с задачей (задача удалена)
func (in *Inbox) Drop(taskID uuid.UUID) {
	in.mtx.Lock()
	defer in.mtx.Unlock()

	for _, b := range in.boxes {
		b.items = slices.DeleteFunc(b.items, func(n notification.Notification) bool {
			return n.TaskID == taskID
		})
		delete(b.emitted, key{typ: notification.TypeLateTask, taskID: taskID})
		delete(b.emitted, key{typ: notification.TypeNewTask, taskID: taskID})
	}
}
