package services

import "sync"

// TournamentLocks — реестр мьютексов по турнирам. Одобрение улова и
// завершение турнира для одного tournamentID сериализуются через общий
// мьютекс, чтобы два пересчёта рангов не переплелись; разные турниры
// никогда не конкурируют за одну блокировку.
type TournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: make(map[int]*sync.Mutex)}
}

// ForTournament возвращает мьютекс турнира, создавая его при первом
// обращении. Мьютексы не удаляются: число турниров ограничено.
func (l *TournamentLocks) ForTournament(tournamentID int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	return m
}
