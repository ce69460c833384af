// Package queue реализует ограниченную приоритетную очередь work items
// с retry и единственным drain-циклом.
//
// # Обзор
//
// Очередь — центральный планировочный примитив движка. Она принимает
// work items с приоритетом, упорядочивает их по (priority desc,
// enqueuedAt asc) и отдаёт runner'у, который прогоняет каждый item
// через реестр процессоров.
//
// # Ключевые компоненты
//
// ## Queue
//
// Ограниченный контейнер на основе binary heap. При переполнении
// вставка вытесняет единственный item с минимальным приоритетом
// (при равенстве — самый старый) и сообщает об этом его отправителю
// через callback. Вставка никогда не отклоняется.
//
//	q := queue.New[*Job](queue.Config{MaxSize: 100})
//	id := q.Enqueue(job, 50, -1, func(out queue.Outcome) { ... })
//
// ## Registry
//
// Упорядоченный набор именованных процессоров. Для каждого item
// процессоры пробуются в порядке регистрации, пока один не вернёт nil.
// Паника процессора перехватывается и превращается в ошибку — один
// плохой item никогда не завершает runner.
//
// ## Runner
//
// Конечный автомат Idle ⇄ Draining. Пока очередь не пуста, runner
// снимает голову, передаёт её Registry и применяет retry-политику:
//
//   - retryCount < maxRetries: инкремент retryCount, штраф к приоритету
//     (повторно падающие items опускаются относительно свежей работы),
//     отложенная повторная вставка через retryBaseDelay * 2^(retryCount-1)
//   - иначе: item окончательно отбрасывается, отправителю сообщается
//     RETRIES_EXHAUSTED
//
// Между item'ами runner выдерживает interItemDelay — троттлинг для
// rate-limited backend'ов. Все ожидания — через таймеры с учётом
// context, без busy-polling. Второй drain-цикл заблокирован guard'ом.
//
// # Владение item
//
// Item находится ровно в одном из состояний: в очереди, у процессора,
// либо удалён (успех, вытеснение, исчерпание retry). В backing store
// он присутствует не более одного раза.
package queue
