package config

import "fmt"

func defaultButtons(b *Buttons) {
	if b.NewQuestion == "" {
		b.NewQuestion = "Новый вопрос"
	}
	if b.GiveUp == "" {
		b.GiveUp = "Сдаться"
	}
	if b.Score == "" {
		b.Score = "Мой счёт"
	}
}

func defaultTexts(t *Texts, b Buttons) {
	if t.Greeting == "" {
		t.Greeting = "Приветствуем вас в нашей викторине, {user}!\n{help}"
	}
	if t.Help == "" {
		t.Help = fmt.Sprintf("Нажмите \"%s\" для начала викторины.\n"+
			"Нажмите \"%s\", чтобы узнать правильный ответ.\n"+
			"Узнать счёт можно нажав \"%s\".\n"+
			"/cancel - закончить викторину.\n"+
			"/help - получить справку о функционале бота.", b.NewQuestion, b.GiveUp, b.Score)
	}
	if t.Score == "" {
		t.Score = "Правильных ответов: {successes}.\nНеугадано вопросов: {give_ups}."
	}
	if t.Farewell == "" {
		t.Farewell = "Спасибо за участие в квизе! Ваш прогресс сохранён.\nДля возобновления отправьте команду /start."
	}
	if t.Next == "" {
		t.Next = fmt.Sprintf("Для следующего вопроса нажмите \"%s\".", b.NewQuestion)
	}
	if t.Correct == "" {
		t.Correct = "Правильно, поздравляю! {next}"
	}
	if t.Incorrect == "" {
		t.Incorrect = "Ответ неверный, попробуйте ещё раз."
	}
	if t.GiveUp == "" {
		t.GiveUp = "Правильный ответ:\n{answer}\n{next}"
	}
	if t.NoQuestion == "" {
		t.NoQuestion = fmt.Sprintf("Вопрос ещё не был задан! Пожалуйста, нажмите \"%s\"!", b.NewQuestion)
	}
	if t.EmptyCorpus == "" {
		t.EmptyCorpus = "Извините, вопросы закончились. Загляните позже!"
	}
	if t.Unavailable == "" {
		t.Unavailable = "Что-то пошло не так. Попробуйте ещё раз чуть позже."
	}
}
