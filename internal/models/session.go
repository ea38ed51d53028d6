package models

import (
	"encoding/json"
	"fmt"
)

// Step шаг диалога редактирования расписания.
type Step int

// Диалог линейный: сначала запрашивается позиция, затем заметка.
const (
	StepAwaitingItem Step = iota + 1
	StepAwaitingNote
)

var stepNames = map[Step]string{
	StepAwaitingItem: "awaiting_item",
	StepAwaitingNote: "awaiting_note",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// MarshalJSON кодирует шаг строковым именем, как он хранится в кеше.
func (s Step) MarshalJSON() ([]byte, error) {
	name, ok := stepNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown step: %d", int(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON восстанавливает шаг из строкового имени. Неизвестное имя
// не является ошибкой декодирования: шаг остается нулевым, а вызывающая
// сторона трактует такую сессию как испорченную и уничтожает ее.
func (s *Step) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for step, n := range stepNames {
		if n == name {
			*s = step
			return nil
		}
	}
	*s = 0
	return nil
}

// Session состояние незавершенного диалога редактирования одного дня.
// Живет только в кеше с TTL, в БД не сохраняется. На пользователя
// существует не больше одной сессии.
type Session struct {
	Step        Step   `json:"step"`
	Day         string `json:"day"`
	CurrentItem string `json:"current_item"`
	CurrentNote string `json:"current_note"`
	// NewItem заполняется после шага с позицией, если пользователь
	// не выбрал «скип»; пустая строка означает «оставить как было».
	NewItem string `json:"new_item,omitempty"`
}
